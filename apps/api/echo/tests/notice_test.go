package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lccc/gatelog/core/notice"
	"github.com/lccc/gatelog/tests"
)

func Test_noticeApi(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	testutil.CreateStudent(t, e.repo, "23-0199", "Juan Dela Cruz", "7", "A")

	notice.NowFunc = func() time.Time { return time.Date(2024, 9, 21, 1, 2, 3, 4e6, time.UTC) }
	notice.NewID = func() string { return "n1" }
	t.Cleanup(func() {
		notice.NowFunc = time.Now
		notice.NewID = uuid.NewString
	})

	name := "notice/23-0199notice_n1.txt"
	escaped := url.PathEscape(name)

	e.run(t, []httpTest{
		{
			name:     "submit",
			method:   http.MethodPost,
			path:     "/admin/submitNotice",
			body:     []byte(`{"studentNumber":"23-0199","noticeText":"Excused until Friday"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"message":"Notice submitted successfully"}`),
		},
		{
			name:     "submit without text",
			method:   http.MethodPost,
			path:     "/admin/submitNotice",
			body:     []byte(`{"studentNumber":"23-0199"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"message":"Invalid request.","errors":{"noticeText":"this field is required"}}`),
		},
		{
			name:     "list",
			method:   http.MethodGet,
			path:     "/admin/notices",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{
				"success": true,
				"notices": []notice.Notice{{
					FileName:      name,
					Content:       "Date: 2024-09-21T01:02:03.004Z\nNotice: Excused until Friday",
					StudentNumber: "23-0199",
				}},
			}),
		},
		{
			name:     "edit",
			method:   http.MethodPut,
			path:     "/admin/editNotice/" + escaped,
			body:     []byte(`{"newNotice":"Excused until Monday"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"message":"Notice updated successfully"}`),
		},
		{
			name:     "edit missing",
			method:   http.MethodPut,
			path:     "/admin/editNotice/" + url.PathEscape("notice/nope.txt"),
			body:     []byte(`{"newNotice":"x"}`),
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"success":false,"message":"Notice not found"}`),
		},
	})

	content, err := e.blobs.Read(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "Date: 2024-09-21T01:02:03.004Z\nNotice: Excused until Monday", content)

	st, err := e.repo.GetStudent(ctx, "23-0199")
	require.NoError(t, err)
	assert.Equal(t, "Excused until Friday", st.Notice)

	e.run(t, []httpTest{
		{
			name:     "remove",
			method:   http.MethodDelete,
			path:     "/admin/removeNotice/" + escaped,
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"message":"Notice removed successfully"}`),
		},
		{
			name:     "remove again",
			method:   http.MethodDelete,
			path:     "/admin/removeNotice/" + escaped,
			wantCode: http.StatusNotFound,
			wantData: []byte(`{"success":false,"message":"Notice not found"}`),
		},
		{
			name:     "empty list",
			method:   http.MethodGet,
			path:     "/admin/notices",
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"notices":[]}`),
		},
	})
}
