package notice

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/student"
)

const (
	folder     = "notice/"
	dateLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("Notice not found")

	NowFunc = time.Now // mockable
	NewID   = uuid.NewString
)

type (
	Notice struct {
		FileName      string `json:"fileName"`
		Content       string `json:"content"`
		StudentNumber string `json:"studentNumber"`
	}

	NewNotice struct {
		StudentNumber string `json:"studentNumber" validate:"required,notblank"`
		NoticeText    string `json:"noticeText" validate:"required,notblank"`
	}

	EditNotice struct {
		NewNotice string `json:"newNotice" validate:"required,notblank"`
	}

	Service struct {
		repo   student.Repository
		blobs  core.BlobStore
		logger core.Logger
	}
)

func (nn *NewNotice) Validate(validate *validator.Validate) error {
	nn.StudentNumber = core.CleanString(nn.StudentNumber)
	nn.NoticeText = core.CleanString(nn.NoticeText)
	return validate.Struct(nn)
}

func (en *EditNotice) Validate(validate *validator.Validate) error {
	en.NewNotice = core.CleanString(en.NewNotice)
	return validate.Struct(en)
}

func NewService(repo student.Repository, blobs core.BlobStore, logger core.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, logger: logger}
}

func render(text string) string {
	return "Date: " + NowFunc().UTC().Format(dateLayout) + "\nNotice: " + text
}

// StudentNumberOf extracts the student number from "notice/<sn>notice_<id>.txt".
func StudentNumberOf(fileName string) string {
	sn, _, _ := strings.Cut(strings.TrimPrefix(fileName, folder), "notice_")
	return sn
}

// FileName normalizes name to a path under the notice folder. Names escaping it are rejected.
func FileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, folder) {
		name = folder + name
	}
	base := strings.TrimPrefix(name, folder)
	if base == "" || strings.Contains(base, "/") || strings.Contains(base, "..") {
		return "", ErrNotFound
	}
	return name, nil
}

// Submit stores a new notice for the student and, when the student is known, makes it the record's notice.
func (svc *Service) Submit(ctx context.Context, nn NewNotice) (Notice, error) {
	n := Notice{
		FileName:      folder + nn.StudentNumber + "notice_" + NewID() + ".txt",
		Content:       render(nn.NoticeText),
		StudentNumber: nn.StudentNumber,
	}
	if err := svc.blobs.Write(ctx, n.FileName, n.Content); err != nil {
		return Notice{}, errors.Wrap(err, "writing notice")
	}

	err := svc.repo.SetNotice(ctx, nn.StudentNumber, nn.NoticeText)
	if err != nil && errors.Cause(err) != student.ErrNotFound {
		return Notice{}, errors.Wrap(err, "updating student notice")
	}
	return n, nil
}

func (svc *Service) List(ctx context.Context) ([]Notice, error) {
	names, err := svc.blobs.List(ctx, folder)
	if err != nil {
		return nil, errors.Wrap(err, "listing notices")
	}

	notices := make([]Notice, 0, len(names))
	for _, name := range names {
		content, err := svc.blobs.Read(ctx, name)
		if errors.Cause(err) == core.ErrBlobNotFound {
			continue // removed meanwhile
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		notices = append(notices, Notice{FileName: name, Content: content, StudentNumber: StudentNumberOf(name)})
	}
	return notices, nil
}

func (svc *Service) Edit(ctx context.Context, fileName string, en EditNotice) (Notice, error) {
	name, err := svc.existing(ctx, fileName)
	if err != nil {
		return Notice{}, err
	}
	n := Notice{FileName: name, Content: render(en.NewNotice), StudentNumber: StudentNumberOf(name)}
	if err = svc.blobs.Write(ctx, name, n.Content); err != nil {
		return Notice{}, errors.Wrap(err, "writing notice")
	}
	return n, nil
}

func (svc *Service) Remove(ctx context.Context, fileName string) error {
	name, err := svc.existing(ctx, fileName)
	if err != nil {
		return err
	}
	if err = svc.blobs.Delete(ctx, name); err != nil {
		if errors.Cause(err) == core.ErrBlobNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "removing notice")
	}
	svc.logger.Info("notice removed: " + name)
	return nil
}

func (svc *Service) existing(ctx context.Context, fileName string) (string, error) {
	name, err := FileName(fileName)
	if err != nil {
		return "", err
	}
	ok, err := svc.blobs.Exists(ctx, name)
	if err != nil {
		return "", errors.Wrap(err, "checking notice")
	}
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}
