package activity

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
)

// Window is the [StartTime, LateTime] wall-clock interval, "HH:MM" each, of on-time arrival.
type Window struct {
	StartTime string `json:"startTime"`
	LateTime  string `json:"lateTime"`
}

// ParseClock parses a 24h "HH:MM" wall clock time.
func ParseClock(s string) (hour, minute int, err error) {
	if !core.HHMMRegex.MatchString(s) {
		return 0, 0, errors.Errorf("invalid clock %q, expected HH:MM", s)
	}
	h, m, _ := strings.Cut(s, ":")
	hour, _ = strconv.Atoi(h)
	minute, _ = strconv.Atoi(m)
	return hour, minute, nil
}

func (w Window) validate() error {
	var flds []core.FieldError
	if _, _, err := ParseClock(w.StartTime); err != nil {
		flds = append(flds, core.FieldError{Field: "newStartTime", Error: err.Error()})
	}
	if _, _, err := ParseClock(w.LateTime); err != nil {
		flds = append(flds, core.FieldError{Field: "newLateTime", Error: err.Error()})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("Invalid time format. Use HH:MM."), flds...)
	}
	return nil
}

// IsLate reports whether t falls outside the window on its own calendar day.
// Arrivals before StartTime are flagged as well as arrivals after LateTime; both boundaries are on time.
// A malformed window flags nothing.
func IsLate(t time.Time, w Window) bool {
	sh, sm, err := ParseClock(w.StartTime)
	if err != nil {
		return false
	}
	lh, lm, err := ParseClock(w.LateTime)
	if err != nil {
		return false
	}
	y, mo, d := t.Date()
	start := time.Date(y, mo, d, sh, sm, 0, 0, t.Location())
	late := time.Date(y, mo, d, lh, lm, 0, 0, t.Location())
	return t.Before(start) || t.After(late)
}

// WindowStore holds the process-wide late Window. It is not persisted.
type WindowStore struct {
	mu     sync.RWMutex
	window Window
}

func NewWindowStore(w Window) (*WindowStore, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &WindowStore{window: w}, nil
}

func (s *WindowStore) Get() Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// Set replaces the window; both clocks must be "HH:MM".
func (s *WindowStore) Set(w Window) error {
	if err := w.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
	return nil
}
