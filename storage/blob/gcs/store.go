package gcsblob

import (
	"context"
	"io"
	"sort"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/lccc/gatelog/core"
)

const (
	contentType  = "text/plain"
	cacheControl = "private, max-age=0"
)

// Store keeps blobs in the default bucket of the Firebase app.
type Store struct {
	bucket *storage.BucketHandle
}

var _ core.BlobStore = (*Store)(nil) // interface compliance check

func New(ctx context.Context, app *firebase.App) (*Store, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening storage")
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, errors.Wrap(err, "opening default bucket")
	}
	return &Store{bucket: bucket}, nil
}

func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.bucket.Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "stat %s", name)
	}
	return true, nil
}

func (s *Store) Read(ctx context.Context, name string) (string, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", core.ErrBlobNotFound
	} else if err != nil {
		return "", errors.Wrapf(err, "opening %s", name)
	}
	defer func() { _ = r.Close() }()

	content, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", name)
	}
	return string(content), nil
}

func (s *Store) Write(ctx context.Context, name, content string) error {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = cacheControl
	if _, err := io.WriteString(w, content); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "writing %s", name)
	}
	return errors.Wrapf(w.Close(), "closing %s", name)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.bucket.Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return core.ErrBlobNotFound
	}
	return errors.Wrapf(err, "deleting %s", name)
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	names := make([]string, 0)
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "listing %s", prefix)
		}
		names = append(names, attrs.Name)
	}
	sort.Strings(names)
	return names, nil
}
