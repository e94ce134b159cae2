package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lccc/gatelog/core/student"
)

func (cli *commandLine) addStudent(ctx context.Context, svcs services, ns student.NewStudent) error {
	if err := ns.Validate(svcs.Validate); err != nil {
		return err
	}
	st, err := svcs.StudentSvc.Enroll(ctx, ns)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "student %s enrolled in %s\n", st.StudentNumber, st.Folder())
	return nil
}

func (cli *commandLine) backfill(ctx context.Context, svcs services) error {
	report, err := svcs.StudentSvc.Backfill(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "scanned: %d\n", report.Scanned)
	fmt.Fprintf(cli.out, "updated: %s\n", strings.Join(report.Updated, ", "))
	fmt.Fprintf(cli.out, "missing: %s\n", strings.Join(report.Missing, ", "))
	return nil
}

func (cli *commandLine) issueToken(ctx context.Context, svcs services, token string) error {
	if err := svcs.KioskSvc.IssueToken(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "token %s issued\n", token)
	return nil
}
