package student_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/storage/blob/inmem"
	"github.com/lccc/gatelog/storage/database/inmem"
	"github.com/lccc/gatelog/tests"
)

func setup() (*student.Service, student.Repository, *inmemblob.Store) {
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	blobs := inmemblob.New()
	return student.NewService(repo, blobs, testutil.NewLogger()), repo, blobs
}

func TestStudent_Paths(t *testing.T) {
	st := student.Student{StudentNumber: "23-0199", FullName: "Juan Dela Cruz", Grade: "7", Section: "A"}
	assert.Equal(t, "students/7/A/23-0199/", st.Folder())
	assert.Equal(t, "students/7/A/23-0199/23-0199_main.txt", st.MainFile())
	assert.Equal(t, "students/7/A/23-0199/23-0199_activity.txt", st.ActivityFile())
	assert.Equal(t, "students/7/A/23-0199/23-0199_violations.txt", st.ViolationsFile())
	assert.Equal(t, "Student Number: 23-0199\nFull Name: Juan Dela Cruz\nGrade: 7\nSection: A\n", st.MainHeader())

	grade, section := student.ParseMainHeader(st.MainHeader() + "Entry Date: 2024-09-21, Time: 9_21_2024_ 8:00:00_AM (Late)")
	assert.Equal(t, "7", grade)
	assert.Equal(t, "A", section)
}

func TestNewStudent_Validate(t *testing.T) {
	validate := validator.New()
	translator, _ := ut.New(en.New(), en.New()).GetTranslator("en")
	core.InitValidators(validate, translator)

	ns := student.NewStudent{
		StudentNumber: " 23-0199 ",
		FullName:      " Juan \t Dela  Cruz ",
		Grade:         "7",
		Section:       "A",
		GuardianEmail: " Guardian@Example.com ",
	}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "23-0199", ns.StudentNumber)
	assert.Equal(t, "Juan Dela Cruz", ns.FullName)
	assert.Equal(t, "guardian@example.com", ns.GuardianEmail)

	bad := student.NewStudent{StudentNumber: "23/0199", FullName: "x", Grade: "7", Section: "A"}
	assert.Error(t, bad.Validate(validate))
	bad = student.NewStudent{StudentNumber: "23-0199", FullName: "x", Grade: "", Section: "A"}
	assert.Error(t, bad.Validate(validate))
}

func TestService_Enroll(t *testing.T) {
	ctx := context.Background()
	svc, repo, blobs := setup()

	st, err := svc.Enroll(ctx, student.NewStudent{StudentNumber: "23-0199", FullName: "Juan Dela Cruz", Grade: "7", Section: "A"})
	require.NoError(t, err)
	assert.False(t, st.CreatedAt.IsZero())

	content, err := blobs.Read(ctx, "students/7/A/23-0199/23-0199_main.txt")
	require.NoError(t, err)
	assert.Equal(t, "Student Number: 23-0199\nFull Name: Juan Dela Cruz\nGrade: 7\nSection: A\n", content)

	// re-enrolling keeps the history
	testutil.AddActivity(t, repo, "23-0199", student.Entry, "Entry Date: 2024-09-21, Time: 9_21_2024_ 8:00:00_AM (Late)", st.CreatedAt)
	_, err = svc.Enroll(ctx, student.NewStudent{StudentNumber: "23-0199", FullName: "Juan D. Cruz", Grade: "8", Section: "B"})
	require.NoError(t, err)
	got, err := svc.Get(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, "Juan D. Cruz", got.FullName)
	assert.Equal(t, "8", got.Grade)
	assert.Len(t, got.EntryTime, 1)
}

func TestService_Info(t *testing.T) {
	ctx := context.Background()
	svc, repo, blobs := setup()
	st := testutil.CreateStudent(t, repo, "23-0199", "Juan Dela Cruz", "7", "A")

	info, err := svc.Info(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, student.Info{
		StudentNumber:  "23-0199",
		FullName:       "Juan Dela Cruz",
		LastViolations: "None",
		Details:        "No additional details",
	}, info)

	require.NoError(t, blobs.Write(ctx, st.ViolationsFile(), "2024-09-20: Late\n2024-09-21: No ID, Littering (Manual Entry)\n\n"))
	require.NoError(t, repo.SetNotice(ctx, "23-0199", "Bring a parent"))
	info, err = svc.Info(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, "2024-09-21: No ID, Littering (Manual Entry)", info.LastViolations)
	assert.Equal(t, "Bring a parent", info.Details)

	_, err = svc.Info(ctx, "nobody")
	assert.True(t, core.IsNotFound(err))
}

func TestService_Backfill(t *testing.T) {
	ctx := context.Background()
	svc, repo, blobs := setup()

	testutil.CreateStudent(t, repo, "1", "Placed", "7", "A")
	testutil.CreateStudent(t, repo, "2", "Unplaced", "", "")
	testutil.CreateStudent(t, repo, "3", "Lost", "", "")
	require.NoError(t, blobs.Write(ctx, "students/9/C/2/2_main.txt", "Student Number: 2\nFull Name: Unplaced\nGrade: 9\nSection: C\n"))

	report, err := svc.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, []string{"2"}, report.Updated)
	assert.Equal(t, []string{"3"}, report.Missing)

	got, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "9", got.Grade)
	assert.Equal(t, "C", got.Section)
	assert.Equal(t, "students/9/C/2/", got.Folder())
}
