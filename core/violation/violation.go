package violation

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
)

const manualEntryTag = " (Manual Entry)"

type (
	// NewViolations is a batch of violations committed by a student on Date.
	NewViolations struct {
		StudentNumber string   `json:"studentNumber" validate:"required,notblank"`
		Violations    []string `json:"violations" validate:"required,min=1,dive,notblank"`
		Date          string   `json:"date" validate:"required,notblank"`
		ManualEntry   bool     `json:"manualEntry"`
	}

	SummaryItem struct {
		Count int      `json:"count"`
		Dates []string `json:"dates"`
	}

	// Summary maps a violation type to its occurrences.
	Summary map[string]*SummaryItem

	Service struct {
		repo   student.Repository
		blobs  core.BlobStore
		logger core.Logger
	}
)

func (nv *NewViolations) Validate(validate *validator.Validate) error {
	nv.StudentNumber = core.CleanString(nv.StudentNumber)
	nv.Date = core.CleanString(nv.Date)
	if err := validate.Struct(nv); err != nil {
		return err
	}
	nv.Violations = core.CleanStrings(nv.Violations)
	return nil
}

// Entry renders the log entry "<date>: a, b[ (Manual Entry)]".
func (nv NewViolations) Entry() string {
	entry := nv.Date + ": " + strings.Join(nv.Violations, ", ")
	if nv.ManualEntry {
		entry += manualEntryTag
	}
	return entry
}

func NewService(repo student.Repository, blobs core.BlobStore, logger core.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, logger: logger}
}

// Log appends the entry to the student's violations file and record.
// violationsCount grows by one per call, or by the number of violations when perViolation is set.
func (svc *Service) Log(ctx context.Context, nv NewViolations, perViolation bool) error {
	st, err := svc.repo.GetStudent(ctx, nv.StudentNumber)
	if err != nil {
		return err
	}

	entry := nv.Entry()
	if err = core.AppendBlob(ctx, svc.blobs, st.ViolationsFile(), entry+"\n"); err != nil {
		return errors.Wrap(err, "appending violations file")
	}

	count := 1
	if perViolation {
		count = len(nv.Violations)
	}
	if err = svc.repo.AppendViolation(ctx, st.StudentNumber, entry, nv.Date, count); err != nil {
		return errors.Wrap(err, "recording violations")
	}
	svc.logger.Info("violations logged: "+entry, st)
	return nil
}

// Summary counts the student's violations per type. An unknown student has none.
func (svc *Service) Summary(ctx context.Context, studentNumber string) (Summary, error) {
	summary := make(Summary)
	st, err := svc.repo.GetStudent(ctx, core.CleanString(studentNumber))
	if errors.Cause(err) == student.ErrNotFound {
		return summary, nil
	} else if err != nil {
		return nil, err
	}

	for _, v := range st.Violations {
		date, types, ok := strings.Cut(v, ": ")
		if !ok {
			continue
		}
		date, _, _ = strings.Cut(date, "T")
		types = strings.TrimSuffix(strings.TrimSpace(types), strings.TrimSpace(manualEntryTag))
		for _, typ := range core.CleanStrings(strings.Split(types, ", ")) {
			item, ok := summary[typ]
			if !ok {
				item = &SummaryItem{Dates: make([]string, 0, 1)}
				summary[typ] = item
			}
			item.Count++
			item.Dates = append(item.Dates, date)
		}
	}
	return summary, nil
}
