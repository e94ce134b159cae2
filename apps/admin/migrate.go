package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lccc/gatelog/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	return migrateFunc(ctx, db.DB, args[0], args[1:]...)
}
