package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/services/logger"
)

// NewLogger returns a RollbarLogger with reporting disabled and output discarded.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
}

// Manila is the timezone every test scan is recorded in.
func Manila(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		return time.FixedZone("Asia/Manila", 8*60*60)
	}
	return loc
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	studentNumber, fullName, grade, section string,
	guardianEmail ...string,
) student.Student {
	t.Helper()
	now := time.Now().UTC()
	st := student.Student{
		StudentNumber: studentNumber,
		FullName:      fullName,
		Grade:         grade,
		Section:       section,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(guardianEmail) > 0 {
		st.GuardianEmail = guardianEmail[0]
	}
	st, err := repo.SaveStudent(context.Background(), st)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// AddActivity appends a recorded line to the student's history.
func AddActivity(t *testing.T, repo student.Repository, studentNumber string, typ student.ActivityType, line string, at time.Time) {
	t.Helper()
	if err := repo.AppendActivity(context.Background(), studentNumber, typ, line, at); err != nil {
		t.Fatalf("AddActivity() failed: %v", err)
	}
}

// NewValidator returns a validator wired with the app's custom tags and english translations.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate, translator
}
