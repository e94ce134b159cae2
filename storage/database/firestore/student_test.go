package firestoredb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lccc/gatelog/core/student"
)

func TestStudentDoc(t *testing.T) {
	at := time.Date(2024, 9, 21, 14, 6, 40, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		st := student.Student{StudentNumber: "23-0199", FullName: "Juan Dela Cruz", Grade: "7", Section: "A"}
		d := newStudentDoc(st)
		assert.Equal(t, []string{}, d.EntryTime)
		assert.Equal(t, []string{}, d.ExitTime)
		assert.Equal(t, []string{}, d.Violations)

		got := d.toStudent()
		assert.Equal(t, st.StudentNumber, got.StudentNumber)
		assert.Equal(t, st.Section, got.Section)
		assert.Nil(t, got.LastActivity)
	})

	t.Run("timestamp last activity", func(t *testing.T) {
		d := studentDoc{StudentNumber: "1", LastActivity: &lastActivityDoc{Time: at, Type: "exit"}}
		assert.Equal(t, &student.LastActivity{Time: at, Type: student.Exit}, d.toStudent().LastActivity)
	})

	t.Run("legacy string last activity", func(t *testing.T) {
		d := studentDoc{StudentNumber: "1", LastActivity: &lastActivityDoc{Time: "9/21/2024, 10:06:40 PM", Type: "entry"}}
		assert.Equal(t, &student.LastActivity{Type: student.Entry}, d.toStudent().LastActivity)
	})
}
