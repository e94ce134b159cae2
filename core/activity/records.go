package activity

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core/student"
)

// ViolationPrefix labels violation entries among a day's records.
const ViolationPrefix = "Violation: "

var violationDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	isoDateLayout,
}

// ViolationTime parses the leading date of a violation entry "<date>: a, b[ (Manual Entry)]".
// Dates without a zone are read in loc.
func ViolationTime(entry string, loc *time.Location) (time.Time, error) {
	entry = strings.TrimPrefix(strings.TrimSpace(entry), ViolationPrefix)
	date, _, _ := strings.Cut(entry, ": ")
	date = strings.TrimSpace(date)
	for _, layout := range violationDateLayouts {
		if t, err := time.ParseInLocation(layout, date, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, errors.Errorf("invalid violation date %q", date)
}

// decodeAny decodes an activity line or a prefixed violation entry.
func decodeAny(line string, loc *time.Location) (time.Time, error) {
	if strings.HasPrefix(line, ViolationPrefix) {
		return ViolationTime(line, loc)
	}
	return Decode(line, loc)
}

// DayRecords returns the student's entries, exits and violations on isoDate (YYYY-MM-DD, in loc),
// oldest first. Violations are prefixed with ViolationPrefix; undecodable values never match.
func DayRecords(st student.Student, isoDate string, loc *time.Location) []string {
	records := make([]string, 0)
	for _, values := range [][]string{st.EntryTime, st.ExitTime} {
		for _, v := range values {
			if DateMatches(v, isoDate, loc) {
				records = append(records, v)
			}
		}
	}
	for _, v := range st.Violations {
		t, err := ViolationTime(v, loc)
		if err == nil && t.Format(isoDateLayout) == isoDate {
			records = append(records, ViolationPrefix+v)
		}
	}

	sortByTime(records, loc, false)
	return records
}
