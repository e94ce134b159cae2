package core

import (
	"context"

	"github.com/pkg/errors"
)

// ErrBlobNotFound is returned by BlobStore reads of a missing object.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a flat, path-addressed text object store (e.g. a Firebase Storage bucket).
type BlobStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Read(ctx context.Context, name string) (string, error)
	Write(ctx context.Context, name, content string) error
	Delete(ctx context.Context, name string) error
	// List returns the names of all objects starting with prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// AppendBlob appends content to the named object, creating it if missing.
// It is a plain read-modify-write: concurrent appends to the same object may lose one of the writes.
func AppendBlob(ctx context.Context, store BlobStore, name, content string) error {
	existing, err := store.Read(ctx, name)
	if err != nil && errors.Cause(err) != ErrBlobNotFound {
		return errors.Wrapf(err, "reading %s", name)
	}
	if err = store.Write(ctx, name, existing+content); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	return nil
}
