package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lccc/gatelog/core/student"
)

func TestReconcile(t *testing.T) {
	loc := manila(t)
	w := Window{StartTime: "04:10", LateTime: "07:10"}
	at := func(day, h, m, s int) time.Time { return time.Date(2024, 9, day, h, m, s, 0, loc) }
	entry := func(tm time.Time, tags ...Tags) string {
		var tg Tags
		if len(tags) > 0 {
			tg = tags[0]
		}
		return FormatLine(student.Entry, tm, tg)
	}
	exit := func(tm time.Time) string { return FormatLine(student.Exit, tm, Tags{}) }

	tests := []struct {
		name           string
		st             student.Student
		now            time.Time
		withViolations bool
		want           Decision
	}{
		{
			name: "first scan of the day is an on-time entry",
			now:  at(21, 6, 30, 0),
			want: Decision{Label: "Entry", Kind: student.Entry, Line: entry(at(21, 6, 30, 0))},
		},
		{
			name: "late entry",
			now:  at(21, 22, 6, 40),
			want: Decision{
				Label: "Entry", Kind: student.Entry, Late: true,
				Line: "Entry Date: 2024-09-21, Time: 9_21_2024_ 10:06:40_PM (Late)",
			},
		},
		{
			name: "entry a minute later becomes an exit",
			st:   student.Student{EntryTime: []string{entry(at(21, 6, 30, 0))}},
			now:  at(21, 6, 31, 0),
			want: Decision{IsExit: true, Label: "Exit", Kind: student.Exit, Line: exit(at(21, 6, 31, 0))},
		},
		{
			name: "exits are never late",
			st:   student.Student{EntryTime: []string{entry(at(21, 6, 30, 0))}},
			now:  at(21, 17, 0, 0),
			want: Decision{IsExit: true, Label: "Exit", Kind: student.Exit, Line: exit(at(21, 17, 0, 0))},
		},
		{
			name: "cooldown",
			st:   student.Student{EntryTime: []string{entry(at(21, 6, 30, 0))}},
			now:  at(21, 6, 30, 59),
			want: Decision{Skipped: true},
		},
		{
			name: "cooldown after exit",
			st: student.Student{
				EntryTime: []string{entry(at(21, 6, 30, 0))},
				ExitTime:  []string{exit(at(21, 12, 0, 0))},
			},
			now:  at(21, 12, 0, 30),
			want: Decision{Skipped: true},
		},
		{
			name: "after an exit comes an entry",
			st: student.Student{
				EntryTime: []string{entry(at(21, 6, 30, 0))},
				ExitTime:  []string{exit(at(21, 12, 0, 0))},
			},
			now:  at(21, 13, 0, 0),
			want: Decision{Label: "Entry", Kind: student.Entry, Late: true, Line: entry(at(21, 13, 0, 0), Tags{Late: true})},
		},
		{
			name: "latest record wins across both arrays",
			st: student.Student{
				EntryTime: []string{entry(at(21, 6, 30, 0)), entry(at(21, 13, 0, 0), Tags{Late: true})},
				ExitTime:  []string{exit(at(21, 12, 0, 0))},
			},
			now:  at(21, 15, 0, 0),
			want: Decision{IsExit: true, Label: "Exit", Kind: student.Exit, Line: exit(at(21, 15, 0, 0))},
		},
		{
			name: "previous day history is ignored",
			st:   student.Student{EntryTime: []string{entry(at(20, 6, 30, 0))}},
			now:  at(21, 6, 30, 30),
			want: Decision{Label: "Entry", Kind: student.Entry, Line: entry(at(21, 6, 30, 30))},
		},
		{
			name: "unparseable history is ignored",
			st:   student.Student{EntryTime: []string{"garbage", ""}},
			now:  at(21, 6, 30, 0),
			want: Decision{Label: "Entry", Kind: student.Entry, Line: entry(at(21, 6, 30, 0))},
		},
		{
			name:           "violations tag on entry",
			now:            at(21, 6, 30, 0),
			withViolations: true,
			want:           Decision{Label: "Entry", Kind: student.Entry, Line: entry(at(21, 6, 30, 0), Tags{Violations: true})},
		},
		{
			name:           "violations tag on exit",
			st:             student.Student{EntryTime: []string{entry(at(21, 6, 30, 0))}},
			now:            at(21, 16, 0, 0),
			withViolations: true,
			want: Decision{
				IsExit: true, Label: "Exit", Kind: student.Exit,
				Line: "Exit Date: 2024-09-21, Time: 9_21_2024_ 4:00:00_PM (Violations)",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.st, tt.now, w, tt.withViolations)
			tt.want.Time = tt.now
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconcile_Alternation(t *testing.T) {
	loc := manila(t)
	w := Window{StartTime: "04:10", LateTime: "07:10"}
	now := time.Date(2024, 9, 21, 6, 0, 0, 0, loc)

	var st student.Student
	wantKinds := []Kind{student.Entry, student.Exit, student.Entry, student.Exit}
	for i, want := range wantKinds {
		d := Reconcile(st, now, w, false)
		assert.False(t, d.Skipped, "scan %d", i)
		assert.Equal(t, want, d.Kind, "scan %d", i)
		if d.IsExit {
			st.ExitTime = append(st.ExitTime, d.Line)
		} else {
			st.EntryTime = append(st.EntryTime, d.Line)
		}
		now = now.Add(time.Minute)
	}
}

func TestReconcile_TieResolvesToExit(t *testing.T) {
	loc := manila(t)
	tm := time.Date(2024, 9, 21, 6, 0, 0, 0, loc)
	st := student.Student{
		EntryTime: []string{FormatLine(student.Entry, tm, Tags{})},
		ExitTime:  []string{FormatLine(student.Exit, tm, Tags{})},
	}
	d := Reconcile(st, tm.Add(2*time.Minute), Window{StartTime: "04:10", LateTime: "07:10"}, false)
	assert.Equal(t, student.Entry, d.Kind)
}
