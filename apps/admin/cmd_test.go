package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	dig_container "github.com/lccc/gatelog/apps/api/di/dig"
	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/core/kiosk"
	"github.com/lccc/gatelog/core/student"
	"github.com/lccc/gatelog/storage/blob/inmem"
	"github.com/lccc/gatelog/storage/database/inmem"
	"github.com/lccc/gatelog/tests"
)

type fixture struct {
	cli   *commandLine
	repo  student.Repository
	blobs *inmemblob.Store
	out   *bytes.Buffer
}

func setup(t *testing.T) fixture {
	t.Helper()
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	blobs := inmemblob.New()
	logger := testutil.NewLogger()
	validate, _ := testutil.NewValidator()

	c := dig.New()
	require.NoError(t, c.Provide(func() student.Repository { return repo }))
	require.NoError(t, c.Provide(func() core.BlobStore { return blobs }))
	require.NoError(t, c.Provide(func() core.Logger { return logger }))
	require.NoError(t, c.Provide(func() dig_container.Closers { return nil }))
	require.NoError(t, c.Provide(func() (*student.Service, *kiosk.Service) {
		return student.NewService(repo, blobs, logger), kiosk.NewService(blobs)
	}))
	require.NoError(t, c.Provide(func() *validator.Validate { return validate }))

	out := new(bytes.Buffer)
	return fixture{
		cli: &commandLine{
			container: c,
			openDB: func() (*sqlx.DB, error) {
				return sqlx.Open("postgres", "postgres://localhost/gatelog_test?sslmode=disable")
			},
			out: out,
		},
		repo:  repo,
		blobs: blobs,
		out:   out,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (f fixture) run(t *testing.T, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := f.cli.run(context.Background(), args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	f := setup(t)

	f.run(t, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, f.out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	origMigrate := migrateFunc
	defer func() { migrateFunc = origMigrate }()

	migrateFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	f.run(t, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	})
}

func Test_commandLine_addStudent(t *testing.T) {
	f := setup(t)

	f.run(t, []cliTest{
		{name: "no args", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "name missing", args: []string{"addstudent", "-number", "23-0199"}, wantErr: errHelp},
		{
			name:       "invalid grade",
			args:       []string{"addstudent", "-number", "23-0199", "-name", "Juan", "-grade", "seven", "-section", "A"},
			wantErrStr: "failed on the 'grade' tag",
		},
		{
			name: "enroll",
			args: []string{"addstudent", "-number", "23-0199", "-name", "Juan Dela Cruz", "-grade", "7", "-section", "A", "-guardian", "guardian@example.com"},
		},
	})

	st, err := f.repo.GetStudent(context.Background(), "23-0199")
	require.NoError(t, err)
	assert.Equal(t, "Juan Dela Cruz", st.FullName)
	assert.Equal(t, "guardian@example.com", st.GuardianEmail)
	assert.Contains(t, f.out.String(), "student 23-0199 enrolled in students/7/A/23-0199/")

	ok, err := f.blobs.Exists(context.Background(), st.MainFile())
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_commandLine_backfill(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateStudent(t, f.repo, "2", "Unplaced", "", "")
	testutil.CreateStudent(t, f.repo, "3", "Lost", "", "")
	require.NoError(t, f.blobs.Write(ctx, "students/8/B/2/2_main.txt", "Student Number: 2\nFull Name: Unplaced\nGrade: 8\nSection: B\n"))

	f.run(t, []cliTest{{name: "backfill", args: []string{"backfill"}}})
	assert.Equal(t, "scanned: 2\nupdated: 2\nmissing: 3\n", f.out.String())

	st, err := f.repo.GetStudent(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "8", st.Grade)
	assert.Equal(t, "B", st.Section)
}

func Test_commandLine_issueToken(t *testing.T) {
	f := setup(t)

	f.run(t, []cliTest{
		{name: "no args", args: []string{"issuetoken"}, wantErr: errHelp},
		{name: "too long", args: []string{"issuetoken", "-token", "ABCDE"}, wantErrStr: "invalid token"},
		{name: "issue", args: []string{"issuetoken", "-token", "AB12"}},
	})

	valid, err := kiosk.NewService(f.blobs).ValidateToken(context.Background(), "AB12")
	require.NoError(t, err)
	assert.True(t, valid)
}
