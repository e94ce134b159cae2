package activity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/lccc/gatelog/core/student"
)

const (
	LateTag       = " (Late)"
	ViolationsTag = " (Violations)"

	// localeLayout is the en-US locale string; Encode replaces its punctuation with "_".
	localeLayout  = "1/2/2006, 3:04:05 PM"
	isoDateLayout = "2006-01-02"
	timeSep       = ", Time: "
	dateLabel     = "Date: "
)

var (
	suffixRegex   = regexp.MustCompile(`\s*\([^)]*\)$`)
	meridiemRegex = regexp.MustCompile(`\s+([AP]M)$`)
)

// Kind is whether a line records an entry or an exit.
type Kind = student.ActivityType

// Tags are the informational flags appended to an encoded time.
type Tags struct {
	Late       bool
	Violations bool
}

func (t Tags) suffix() string {
	var s string
	if t.Late {
		s += LateTag
	}
	if t.Violations {
		s += ViolationsTag
	}
	return s
}

// FormatError reports a value that is not a well formed encoded timestamp.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Input, e.Reason)
}

func formatErr(input, reason string, args ...interface{}) error {
	return &FormatError{Input: input, Reason: fmt.Sprintf(reason, args...)}
}

// Encode renders t, in its own location and truncated to the second, as "M_D_YYYY_ H:MM:SS_AM" followed by the tags.
func Encode(t time.Time, tags Tags) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == ':' {
			return r
		}
		return '_'
	}, t.Format(localeLayout))
	return meridiemRegex.ReplaceAllString(s, "_$1") + tags.suffix()
}

// FormatLine renders the canonical log line "<Entry|Exit> Date: YYYY-MM-DD, Time: <encoded>".
func FormatLine(kind Kind, t time.Time, tags Tags) string {
	return kind.Label() + " " + dateLabel + t.Format(isoDateLayout) + timeSep + Encode(t, tags)
}

// HasTag reports whether the encoded value carries tag (LateTag or ViolationsTag).
func HasTag(s, tag string) bool {
	return strings.Contains(s, tag)
}

// StripTags removes every trailing parenthetical suffix.
func StripTags(s string) string {
	s = strings.TrimSpace(s)
	for {
		stripped := suffixRegex.ReplaceAllString(s, "")
		if stripped == s {
			return s
		}
		s = strings.TrimSpace(stripped)
	}
}

// Decode parses a log line "<label> Date: YYYY-MM-DD, Time: <encoded>" back into a date-time in loc.
// A bare encoded time "M_D_YYYY_ H:MM:SS_AM" is accepted as well. Failures are *FormatError.
func Decode(s string, loc *time.Location) (time.Time, error) {
	value := StripTags(s)

	datePart, timePart, ok := strings.Cut(value, timeSep)
	if !ok {
		return decodeBare(s, value, loc)
	}
	if i := strings.LastIndex(datePart, dateLabel); i >= 0 {
		datePart = datePart[i+len(dateLabel):]
	}
	datePart = strings.TrimSpace(datePart)
	if datePart == "" || strings.TrimSpace(timePart) == "" {
		return time.Time{}, formatErr(s, "missing date or time part")
	}

	fields := strings.Split(datePart, "-")
	if len(fields) != 3 {
		return time.Time{}, formatErr(s, "date part %q is not YYYY-MM-DD", datePart)
	}
	ymd, err := atois(fields[0], fields[1], fields[2])
	if err != nil {
		return time.Time{}, formatErr(s, "date part %q is not numeric", datePart)
	}

	tokens := splitTokens(timePart)
	if len(tokens) < 4 {
		return time.Time{}, formatErr(s, "time part %q has fewer than 4 tokens", timePart)
	}
	return build(s, ymd[0], ymd[1], ymd[2], tokens[len(tokens)-2], tokens[len(tokens)-1], loc)
}

func decodeBare(input, value string, loc *time.Location) (time.Time, error) {
	tokens := splitTokens(value)
	if len(tokens) < 5 {
		return time.Time{}, formatErr(input, "missing %q separator", strings.TrimSpace(timeSep))
	}
	mdy, err := atois(tokens[0], tokens[1], tokens[2])
	if err != nil {
		return time.Time{}, formatErr(input, "date tokens are not numeric")
	}
	return build(input, mdy[2], mdy[0], mdy[1], tokens[len(tokens)-2], tokens[len(tokens)-1], loc)
}

func build(input string, year, month, day int, clock, meridiem string, loc *time.Location) (time.Time, error) {
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return time.Time{}, formatErr(input, "clock %q is not H:MM:SS", clock)
	}
	hour, err := atois(hms...)
	if err != nil {
		return time.Time{}, formatErr(input, "clock %q is not numeric", clock)
	}
	h, m, sec := hour[0], hour[1], hour[2]
	if h < 1 || h > 12 {
		return time.Time{}, formatErr(input, "hour %d is not on a 12-hour clock", h)
	}

	switch strings.ToUpper(meridiem) {
	case "AM":
		// 12 AM is midnight, so encoded times round-trip
		if h == 12 {
			h = 0
		}
	case "PM":
		if h != 12 {
			h += 12
		}
	default:
		return time.Time{}, formatErr(input, "unknown meridiem %q", meridiem)
	}

	t := time.Date(year, time.Month(month), day, h, m, sec, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day || t.Hour() != h || t.Minute() != m || t.Second() != sec {
		return time.Time{}, formatErr(input, "not a valid calendar date-time")
	}
	return t, nil
}

// DateMatches reports whether s decodes to a date-time on isoDate (YYYY-MM-DD) in loc.
func DateMatches(s, isoDate string, loc *time.Location) bool {
	t, err := Decode(s, loc)
	if err != nil {
		return false
	}
	return t.Format(isoDateLayout) == isoDate
}

func splitTokens(s string) []string {
	parts := strings.Split(s, "_")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func atois(ss ...string) ([]int, error) {
	ns := make([]int, len(ss))
	for i, s := range ss {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		ns[i] = n
	}
	return ns, nil
}
