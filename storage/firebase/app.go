package firebaseapp

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/lccc/gatelog/core"
)

// New initializes the Firebase app backing the Firestore and Storage clients.
// Without explicit credentials the application default credentials are used.
func New(ctx context.Context, conf *core.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if conf.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Firebase.CredentialsFile))
	} else if conf.Firebase.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(conf.Firebase.CredentialsJSON)))
	}

	cfg := &firebase.Config{
		ProjectID:     conf.Firebase.ProjectID,
		StorageBucket: conf.Firebase.StorageBucket,
	}
	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	return app, nil
}
