package activity

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
)

var NowFunc = time.Now // mockable

const lateArrivalTemplate = "late_arrival"

type (
	Service struct {
		repo     student.Repository
		blobs    core.BlobStore
		windows  *WindowStore
		mailSvc  core.EmailService
		logger   core.Logger
		loc      *time.Location
		cooldown time.Duration
	}

	// Result is the outcome of a logged scan.
	Result struct {
		Decision
		Student student.Student
	}

	lateArrivalData struct {
		FullName      string
		StudentNumber string
		Time          string
		Line          string
	}
)

func NewService(
	repo student.Repository,
	blobs core.BlobStore,
	windows *WindowStore,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	cooldown := conf.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		windows:  windows,
		mailSvc:  mailSvc,
		logger:   logger,
		loc:      conf.Location(),
		cooldown: cooldown,
	}
}

func (svc *Service) Location() *time.Location { return svc.loc }

// Log records a scan of the student now: the record arrays and lastActivity first, then the activity file,
// then the main file when the entry is late. A scan within the cooldown is skipped without side effects.
// The writes are not transactional: a failure after the record update leaves the files behind.
func (svc *Service) Log(ctx context.Context, studentNumber string, withViolations bool) (Result, error) {
	st, err := svc.repo.GetStudent(ctx, core.CleanString(studentNumber))
	if err != nil {
		return Result{}, err
	}

	now := NowFunc().In(svc.loc)
	d := reconcile(st, now, svc.windows.Get(), withViolations, svc.cooldown)
	res := Result{Decision: d, Student: st}
	if d.Skipped {
		svc.logger.Debug("cooldown period not met, scan skipped: "+st.StudentNumber, st)
		return res, nil
	}

	if err = svc.repo.AppendActivity(ctx, st.StudentNumber, d.Kind, d.Line, d.Time); err != nil {
		return Result{}, errors.Wrap(err, "recording activity")
	}
	if err = core.AppendBlob(ctx, svc.blobs, st.ActivityFile(), d.Line+"\n"); err != nil {
		return Result{}, errors.Wrap(err, "appending activity file")
	}

	if d.Late {
		// the scan is already recorded; a stale summary must not fail it
		if err = svc.consolidateMainFile(ctx, st, d.Line); err != nil {
			svc.logger.Error("updating main file", err, st)
		}
		svc.notifyGuardian(st, d)
	}
	svc.logger.Info("logged "+d.Label+": "+d.Line, st)
	return res, nil
}

func (svc *Service) consolidateMainFile(ctx context.Context, st student.Student, line string) error {
	content, err := svc.blobs.Read(ctx, st.MainFile())
	switch {
	case errors.Cause(err) == core.ErrBlobNotFound:
		content = st.MainHeader()
	case err != nil:
		return errors.Wrap(err, "reading main file")
	}
	if err = svc.blobs.Write(ctx, st.MainFile(), ConsolidateLateEntries(content, line, svc.loc)); err != nil {
		return errors.Wrap(err, "writing main file")
	}
	return nil
}

func (svc *Service) notifyGuardian(st student.Student, d Decision) {
	if st.GuardianEmail == "" || svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: "Guardian of " + st.FullName, Address: st.GuardianEmail}},
		Subject:      "Late arrival of " + st.FullName,
		TemplateName: lateArrivalTemplate,
		TemplateData: lateArrivalData{
			FullName:      st.FullName,
			StudentNumber: st.StudentNumber,
			Time:          d.Time.Format("3:04 PM"),
			Line:          d.Line,
		},
	})
}

// Records returns the student's chronological records on isoDate (YYYY-MM-DD).
func (svc *Service) Records(ctx context.Context, studentNumber, isoDate string) ([]string, error) {
	st, err := svc.repo.GetStudent(ctx, core.CleanString(studentNumber))
	if err != nil {
		return nil, err
	}
	return DayRecords(st, isoDate, svc.loc), nil
}

func (svc *Service) Window() Window { return svc.windows.Get() }

func (svc *Service) SetWindow(w Window) error { return svc.windows.Set(w) }
