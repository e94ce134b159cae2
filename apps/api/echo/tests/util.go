package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/lccc/gatelog/apps/api/echo"
	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/activity"
	"github.com/lccc/gatelog/core/kiosk"
	"github.com/lccc/gatelog/core/notice"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/core/violation"
	"github.com/lccc/gatelog/services/email"
	"github.com/lccc/gatelog/storage/blob/inmem"
	"github.com/lccc/gatelog/storage/database/inmem"
	"github.com/lccc/gatelog/tests"
)

type env struct {
	app   *Server
	repo  student.Repository
	blobs *inmemblob.Store
	loc   *time.Location
}

func setup(t *testing.T) env {
	t.Helper()
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()

	// set up stores
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	blobs := inmemblob.New()

	// set up services
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	windows, err := activity.NewWindowStore(activity.Window{
		StartTime: conf.LateWindow.StartTime,
		LateTime:  conf.LateWindow.LateTime,
	})
	require.NoError(t, err)
	validate, translator := testutil.NewValidator()

	// set up server
	app := NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		ActivitySvc:  activity.NewService(repo, blobs, windows, mailSvc, logger, conf),
		StudentSvc:   student.NewService(repo, blobs, logger),
		ViolationSvc: violation.NewService(repo, blobs, logger),
		NoticeSvc:    notice.NewService(repo, blobs, logger),
		KioskSvc:     kiosk.NewService(blobs),
	})
	return env{app: app, repo: repo, blobs: blobs, loc: testutil.Manila(t)}
}

// at freezes the scan clock.
func at(t *testing.T, tm time.Time) {
	t.Helper()
	activity.NowFunc = func() time.Time { return tm }
	t.Cleanup(func() { activity.NowFunc = time.Now })
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (e env) do(t *testing.T, method, path string, data ...[]byte) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newRequest(method, path, data...)
	e.app.ServeHTTP(rec, req)
	return rec
}

func (e env) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
