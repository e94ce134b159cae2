package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/activity"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/services/email"
	"github.com/lccc/gatelog/storage/blob/inmem"
	"github.com/lccc/gatelog/storage/database/inmem"
	"github.com/lccc/gatelog/tests"
)

type fixture struct {
	svc   *activity.Service
	repo  student.Repository
	blobs *inmemblob.Store
	loc   *time.Location
}

func setup(t *testing.T) fixture {
	t.Helper()
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	blobs := inmemblob.New()
	windows, err := activity.NewWindowStore(activity.Window{StartTime: "04:10", LateTime: "07:10"})
	require.NoError(t, err)

	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	return fixture{
		svc:   activity.NewService(repo, blobs, windows, mailSvc, logger, conf),
		repo:  repo,
		blobs: blobs,
		loc:   testutil.Manila(t),
	}
}

func (f fixture) at(t *testing.T, tm time.Time) {
	t.Helper()
	activity.NowFunc = func() time.Time { return tm }
	t.Cleanup(func() { activity.NowFunc = time.Now })
}

func (f fixture) read(t *testing.T, name string) string {
	t.Helper()
	content, err := f.blobs.Read(context.Background(), name)
	require.NoError(t, err)
	return content
}

func TestService_Log(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	st := testutil.CreateStudent(t, f.repo, "23-0199", "Juan Dela Cruz", "7", "A", "guardian@example.com")
	require.NoError(t, f.blobs.Write(ctx, st.MainFile(), st.MainHeader()))

	// late entry
	f.at(t, time.Date(2024, 9, 21, 22, 6, 40, 0, f.loc))
	res, err := f.svc.Log(ctx, " 23-0199 ", false)
	require.NoError(t, err)
	lateLine := "Entry Date: 2024-09-21, Time: 9_21_2024_ 10:06:40_PM (Late)"
	assert.False(t, res.Skipped)
	assert.False(t, res.IsExit)
	assert.True(t, res.Late)
	assert.Equal(t, "Entry", res.Label)
	assert.Equal(t, lateLine, res.Line)
	assert.Equal(t, "Juan Dela Cruz", res.Student.FullName)

	got, err := f.repo.GetStudent(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, []string{lateLine}, got.EntryTime)
	assert.Empty(t, got.ExitTime)
	require.NotNil(t, got.LastActivity)
	assert.Equal(t, student.Entry, got.LastActivity.Type)
	assert.True(t, time.Date(2024, 9, 21, 22, 6, 40, 0, f.loc).Equal(got.LastActivity.Time))

	assert.Equal(t, lateLine+"\n", f.read(t, st.ActivityFile()))
	assert.Equal(t, st.MainHeader()+lateLine, f.read(t, st.MainFile()))

	sent := emailsvc.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "guardian@example.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "arrived late today at 10:06 PM")

	// re-scan within the cooldown
	f.at(t, time.Date(2024, 9, 21, 22, 7, 10, 0, f.loc))
	res, err = f.svc.Log(ctx, "23-0199", false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	got2, err := f.repo.GetStudent(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, got, got2, "a skipped scan must not change the record")
	assert.Equal(t, lateLine+"\n", f.read(t, st.ActivityFile()))

	// exit
	f.at(t, time.Date(2024, 9, 21, 22, 8, 0, 0, f.loc))
	res, err = f.svc.Log(ctx, "23-0199", true)
	require.NoError(t, err)
	exitLine := "Exit Date: 2024-09-21, Time: 9_21_2024_ 10:08:00_PM (Violations)"
	assert.True(t, res.IsExit)
	assert.False(t, res.Late)
	assert.Equal(t, exitLine, res.Line)
	assert.Equal(t, lateLine+"\n"+exitLine+"\n", f.read(t, st.ActivityFile()))
	assert.Equal(t, st.MainHeader()+lateLine, f.read(t, st.MainFile()), "exits never reach the main file")
	assert.Len(t, emailsvc.GetSentMessages(), 1)

	got, err = f.repo.GetStudent(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, []string{exitLine}, got.ExitTime)
	assert.Equal(t, student.Exit, got.LastActivity.Type)
}

func TestService_Log_MainFileCreatedFromRecord(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	st := testutil.CreateStudent(t, f.repo, "23-0200", "Maria Clara", "8", "B")

	f.at(t, time.Date(2024, 9, 21, 8, 0, 0, 0, f.loc))
	res, err := f.svc.Log(ctx, "23-0200", false)
	require.NoError(t, err)
	require.True(t, res.Late)

	assert.Equal(t, st.MainHeader()+res.Line, f.read(t, "students/8/B/23-0200/23-0200_main.txt"))
	assert.Empty(t, emailsvc.GetSentMessages(), "no guardian email, no message")
}

func TestService_Log_OnTimeLeavesMainFile(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	st := testutil.CreateStudent(t, f.repo, "23-0201", "Jose Rizal", "9", "C")

	f.at(t, time.Date(2024, 9, 21, 6, 0, 0, 0, f.loc))
	res, err := f.svc.Log(ctx, "23-0201", false)
	require.NoError(t, err)
	assert.False(t, res.Late)

	ok, err := f.blobs.Exists(ctx, st.MainFile())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Log_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Log(context.Background(), "nobody", false)
	assert.True(t, errors.Is(err, student.ErrNotFound))
	assert.True(t, core.IsNotFound(err))
}

func TestService_Records(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	testutil.CreateStudent(t, f.repo, "23-0199", "Juan Dela Cruz", "7", "A")

	f.at(t, time.Date(2024, 9, 21, 8, 0, 0, 0, f.loc))
	in, err := f.svc.Log(ctx, "23-0199", false)
	require.NoError(t, err)
	f.at(t, time.Date(2024, 9, 21, 17, 0, 0, 0, f.loc))
	out, err := f.svc.Log(ctx, "23-0199", false)
	require.NoError(t, err)

	records, err := f.svc.Records(ctx, "23-0199", "2024-09-21")
	require.NoError(t, err)
	assert.Equal(t, []string{in.Line, out.Line}, records)

	records, err = f.svc.Records(ctx, "23-0199", "2024-09-22")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = f.svc.Records(ctx, "nobody", "2024-09-21")
	assert.True(t, core.IsNotFound(err))
}

func TestService_Window(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.svc.SetWindow(activity.Window{StartTime: "05:00", LateTime: "08:00"}))
	assert.Equal(t, activity.Window{StartTime: "05:00", LateTime: "08:00"}, f.svc.Window())
	assert.Error(t, f.svc.SetWindow(activity.Window{StartTime: "5", LateTime: "08:00"}))
}
