package activity

import (
	"time"

	"github.com/lccc/gatelog/core/student"
)

// DefaultCooldown is the minimum gap between two recorded activities of a student on the same day.
const DefaultCooldown = time.Minute

// Decision is the outcome of reconciling one scan.
type Decision struct {
	Skipped bool // cooldown not met, nothing to record
	IsExit  bool
	Label   string // "Entry" or "Exit"
	Kind    Kind
	Line    string // canonical log line
	Late    bool
	Time    time.Time
}

type record struct {
	kind Kind
	at   time.Time
}

// lastToday finds the most recent record of the student on now's calendar day.
// Each array is scanned from its end; on equal times the exit wins.
func lastToday(st student.Student, now time.Time) (record, bool) {
	loc := now.Location()
	today := now.Format(isoDateLayout)

	latest := func(values []string) (time.Time, bool) {
		for i := len(values) - 1; i >= 0; i-- {
			t, err := Decode(values[i], loc)
			if err != nil {
				continue
			}
			if t.Format(isoDateLayout) == today {
				return t, true
			}
		}
		return time.Time{}, false
	}

	entryAt, hasEntry := latest(st.EntryTime)
	exitAt, hasExit := latest(st.ExitTime)
	switch {
	case hasExit && (!hasEntry || !exitAt.Before(entryAt)):
		return record{kind: student.Exit, at: exitAt}, true
	case hasEntry:
		return record{kind: student.Entry, at: entryAt}, true
	}
	return record{}, false
}

// Reconcile classifies a scan of st at now with the default cooldown.
func Reconcile(st student.Student, now time.Time, w Window, withViolations bool) Decision {
	return reconcile(st, now, w, withViolations, DefaultCooldown)
}

// reconcile skips scans within cooldown of the latest same-day record. A record later than now,
// after clock skew or a timezone change, keeps skipping until now passes it.
func reconcile(st student.Student, now time.Time, w Window, withViolations bool, cooldown time.Duration) Decision {
	now = now.Truncate(time.Second)
	kind := student.Entry

	if last, ok := lastToday(st, now); ok {
		if now.Sub(last.at) < cooldown {
			return Decision{Skipped: true, Time: now}
		}
		if last.kind == student.Entry {
			kind = student.Exit
		}
	}

	tags := Tags{Violations: withViolations}
	if kind == student.Entry {
		tags.Late = IsLate(now, w)
	}
	return Decision{
		IsExit: kind == student.Exit,
		Label:  kind.Label(),
		Kind:   kind,
		Line:   FormatLine(kind, now, tags),
		Late:   tags.Late,
		Time:   now,
	}
}
