package logsvc

import (
	"bytes"
	"fmt"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
)

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())

	st := student.Student{StudentNumber: "23-0199", FullName: "Juan Dela Cruz"}
	lgr.Error("logging activity", fmt.Errorf("boom"), st)

	assert.Equal(t, "logging activity\nboom\nstudent: 23-0199 (Juan Dela Cruz)\n", buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	lgr := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), core.NewTestConfig())
	err := fmt.Errorf("boom")
	extra := map[string]interface{}{"path": "students/7/A/1/1_main.txt"}

	args := lgr.prepare("msg", []interface{}{err, student.Student{StudentNumber: "1"}, extra})
	assert.Equal(t, []interface{}{"msg", err, extra}, args)
}
