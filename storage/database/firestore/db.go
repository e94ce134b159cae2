package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const studentsCollection = "students"

func Open(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening firestore")
	}
	return client, nil
}

func isNotFound(err error) bool {
	return status.Code(errors.Cause(err)) == codes.NotFound
}
