package kiosk

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lccc/gatelog/core"
)

// TokenLength is the length of a kiosk unlock token.
const TokenLength = 4

type Service struct {
	blobs core.BlobStore
}

func NewService(blobs core.BlobStore) *Service {
	return &Service{blobs: blobs}
}

// TokenPath is the blob whose presence makes token valid.
func TokenPath(token string) string {
	return "Token/" + token + ".txt"
}

// WellFormed reports whether token has the kiosk token length.
func WellFormed(token string) bool {
	return utf8.RuneCountInString(token) == TokenLength
}

// ValidateToken reports whether the well formed token has been issued.
func (svc *Service) ValidateToken(ctx context.Context, token string) (bool, error) {
	if !WellFormed(token) {
		return false, nil
	}
	ok, err := svc.blobs.Exists(ctx, TokenPath(token))
	if err != nil {
		return false, errors.Wrap(err, "checking token")
	}
	return ok, nil
}

// IssueToken creates the token blob.
func (svc *Service) IssueToken(ctx context.Context, token string) error {
	if !WellFormed(token) {
		return core.NewValidationError(errors.New("invalid token"),
			core.FieldError{Field: "token", Error: "the token must be 4 characters long"})
	}
	return errors.Wrap(svc.blobs.Write(ctx, TokenPath(token), ""), "writing token")
}
