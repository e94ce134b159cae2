package student

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("Student not found")

	// ProbeGrades and ProbeSections are the folders searched by Backfill.
	ProbeGrades   = []string{"7", "8", "9", "10"}
	ProbeSections = []string{"A", "B", "C", "D"}

	NowFunc = time.Now // mockable
)

const (
	noViolations = "None"
	noDetails    = "No additional details"
)

type (
	Repository interface {
		GetStudent(ctx context.Context, studentNumber string) (Student, error)
		// SaveStudent creates the student or overwrites its identity fields, keeping its history.
		SaveStudent(ctx context.Context, st Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		UpdatePlacement(ctx context.Context, studentNumber, grade, section string) error
		SetNotice(ctx context.Context, studentNumber, notice string) error
		// AppendActivity appends line to the entry or exit array and overwrites lastActivity.
		AppendActivity(ctx context.Context, studentNumber string, typ ActivityType, line string, at time.Time) error
		// AppendViolation appends entry to the violations array, sets lastViolationDate and adds count to violationsCount.
		AppendViolation(ctx context.Context, studentNumber, entry, date string, count int) error
	}

	Service struct {
		repo   Repository
		blobs  core.BlobStore
		logger core.Logger
	}

	BackfillReport struct {
		Scanned int
		Updated []string
		Missing []string
	}
)

func NewService(repo Repository, blobs core.BlobStore, logger core.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, logger: logger}
}

func (svc *Service) Get(ctx context.Context, studentNumber string) (Student, error) {
	return svc.repo.GetStudent(ctx, core.CleanString(studentNumber))
}

// Enroll writes the main file header and the student record.
func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (Student, error) {
	now := NowFunc().UTC()
	st := Student{
		StudentNumber: ns.StudentNumber,
		FullName:      ns.FullName,
		Grade:         ns.Grade,
		Section:       ns.Section,
		GuardianEmail: ns.GuardianEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := svc.blobs.Write(ctx, st.MainFile(), st.MainHeader()); err != nil {
		return Student{}, errors.Wrap(err, "writing main file")
	}
	st, err := svc.repo.SaveStudent(ctx, st)
	if err != nil {
		return Student{}, errors.Wrap(err, "saving student")
	}
	svc.logger.Info("student enrolled: "+st.StudentNumber, st)
	return st, nil
}

// Info returns the student's name, latest violations line and notice.
func (svc *Service) Info(ctx context.Context, studentNumber string) (Info, error) {
	st, err := svc.Get(ctx, studentNumber)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		StudentNumber:  st.StudentNumber,
		FullName:       st.FullName,
		LastViolations: noViolations,
		Details:        st.Notice,
	}
	if info.Details == "" {
		info.Details = noDetails
	}

	content, err := svc.blobs.Read(ctx, st.ViolationsFile())
	switch {
	case errors.Cause(err) == core.ErrBlobNotFound:
	case err != nil:
		return Info{}, errors.Wrap(err, "reading violations file")
	default:
		lines := core.CleanStrings(strings.Split(content, "\n"))
		if len(lines) > 0 {
			info.LastViolations = lines[len(lines)-1]
		}
	}
	return info, nil
}

// Backfill locates the folder of every student lacking a grade or section by probing
// ProbeGrades x ProbeSections for its main file, and copies the placement found there onto the record.
func (svc *Service) Backfill(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport

	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return report, errors.Wrap(err, "querying students")
	}

	for _, st := range students {
		if st.Grade != "" && st.Section != "" {
			continue
		}
		report.Scanned++

		grade, section, found, err := svc.probe(ctx, st.StudentNumber)
		if err != nil {
			return report, err
		}
		if !found {
			report.Missing = append(report.Missing, st.StudentNumber)
			continue
		}
		if err = svc.repo.UpdatePlacement(ctx, st.StudentNumber, grade, section); err != nil {
			return report, errors.Wrapf(err, "updating placement of %s", st.StudentNumber)
		}
		report.Updated = append(report.Updated, st.StudentNumber)
	}
	return report, nil
}

func (svc *Service) probe(ctx context.Context, studentNumber string) (grade, section string, found bool, err error) {
	for _, g := range ProbeGrades {
		for _, s := range ProbeSections {
			path := FolderPath(g, s, studentNumber) + studentNumber + "_main.txt"
			content, rerr := svc.blobs.Read(ctx, path)
			if errors.Cause(rerr) == core.ErrBlobNotFound {
				continue
			} else if rerr != nil {
				return "", "", false, errors.Wrapf(rerr, "reading %s", path)
			}

			grade, section = ParseMainHeader(content)
			if grade == "" {
				grade = g
			}
			if section == "" {
				section = s
			}
			return grade, section, true, nil
		}
	}
	return "", "", false, nil
}
