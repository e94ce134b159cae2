package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/dig"

	dig_container "github.com/lccc/gatelog/apps/api/di/dig"
	"github.com/lccc/gatelog/core/kiosk"
	"github.com/lccc/gatelog/core/student"
)

var errHelp = errors.New("help provided")

type (
	commandLine struct {
		container *dig.Container
		openDB    func() (*sqlx.DB, error)
		out       io.Writer
	}

	services struct {
		dig.In

		Validate   *validator.Validate
		StudentSvc *student.Service
		KioskSvc   *kiosk.Service
		Closers    dig_container.Closers
	}
)

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) on the postgres store")
	fmt.Fprintln(cli.out, "  addstudent -number SN -name NAME -grade GRADE -section SECTION [-guardian EMAIL] - enroll a student")
	fmt.Fprintln(cli.out, "  backfill - locate the folder of students without grade or section")
	fmt.Fprintln(cli.out, "  issuetoken -token TOKEN - issue a kiosk unlock token")
}

// withServices runs fn with the storage backed services, closing the stores afterwards.
func (cli *commandLine) withServices(fn func(svcs services) error) error {
	return cli.container.Invoke(func(svcs services) error {
		defer func() { _ = svcs.Closers.Close() }()
		return fn(svcs)
	})
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ContinueOnError)
	addStudentCmd.SetOutput(cli.out)
	addStudentNumber := addStudentCmd.String("number", "", "The student number (barcode).")
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentGrade := addStudentCmd.String("grade", "", "The student's grade, e.g. 7.")
	addStudentSection := addStudentCmd.String("section", "", "The student's section, e.g. A.")
	addStudentGuardian := addStudentCmd.String("guardian", "", "The guardian's email, notified on late arrivals.")

	issueTokenCmd := flag.NewFlagSet("issuetoken", flag.ContinueOnError)
	issueTokenCmd.SetOutput(cli.out)
	issueToken := issueTokenCmd.String("token", "", "The 4 characters kiosk token.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentNumber == "" || *addStudentName == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		ns := student.NewStudent{
			StudentNumber: *addStudentNumber,
			FullName:      *addStudentName,
			Grade:         *addStudentGrade,
			Section:       *addStudentSection,
			GuardianEmail: *addStudentGuardian,
		}
		return cli.withServices(func(svcs services) error {
			return cli.addStudent(ctx, svcs, ns)
		})
	case "backfill":
		return cli.withServices(func(svcs services) error {
			return cli.backfill(ctx, svcs)
		})
	case "issuetoken":
		if err := issueTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *issueToken == "" {
			issueTokenCmd.Usage()
			return errHelp
		}
		return cli.withServices(func(svcs services) error {
			return cli.issueToken(ctx, svcs, *issueToken)
		})
	default:
		cli.printUsage()
		return errHelp
	}
}
