package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/lccc/gatelog/core/student"
)

const studentColumns = `student_number, full_name, grade, section, guardian_email, notice,
	entry_time, exit_time, violations, violations_count, last_violation_date,
	last_activity_time, last_activity_type, created_at, updated_at`

// studentRow is a row of the students table.
type studentRow struct {
	StudentNumber     string         `db:"student_number"`
	FullName          string         `db:"full_name"`
	Grade             string         `db:"grade"`
	Section           string         `db:"section"`
	GuardianEmail     string         `db:"guardian_email"`
	Notice            string         `db:"notice"`
	EntryTime         pq.StringArray `db:"entry_time"`
	ExitTime          pq.StringArray `db:"exit_time"`
	Violations        pq.StringArray `db:"violations"`
	ViolationsCount   int            `db:"violations_count"`
	LastViolationDate null.String    `db:"last_violation_date"`
	LastActivityTime  null.Time      `db:"last_activity_time"`
	LastActivityType  null.String    `db:"last_activity_type"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// toRow converts a student.Student to a studentRow
func toRow(st student.Student) studentRow {
	row := studentRow{
		StudentNumber:     st.StudentNumber,
		FullName:          st.FullName,
		Grade:             st.Grade,
		Section:           st.Section,
		GuardianEmail:     st.GuardianEmail,
		Notice:            st.Notice,
		EntryTime:         nonNil(st.EntryTime),
		ExitTime:          nonNil(st.ExitTime),
		Violations:        nonNil(st.Violations),
		ViolationsCount:   st.ViolationsCount,
		LastViolationDate: null.NewString(st.LastViolationDate, st.LastViolationDate != ""),
		CreatedAt:         st.CreatedAt,
		UpdatedAt:         st.UpdatedAt,
	}
	if st.LastActivity != nil {
		row.LastActivityTime = null.TimeFrom(st.LastActivity.Time)
		row.LastActivityType = null.StringFrom(string(st.LastActivity.Type))
	}
	return row
}

// fromRow converts a studentRow to a student.Student
func fromRow(row studentRow) student.Student {
	st := student.Student{
		StudentNumber:     row.StudentNumber,
		FullName:          row.FullName,
		Grade:             row.Grade,
		Section:           row.Section,
		GuardianEmail:     row.GuardianEmail,
		Notice:            row.Notice,
		EntryTime:         nonNil(row.EntryTime),
		ExitTime:          nonNil(row.ExitTime),
		Violations:        nonNil(row.Violations),
		ViolationsCount:   row.ViolationsCount,
		LastViolationDate: row.LastViolationDate.String,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
	if row.LastActivityTime.Valid {
		st.LastActivity = &student.LastActivity{
			Time: row.LastActivityTime.Time,
			Type: student.ActivityType(row.LastActivityType.String),
		}
	}
	return st
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// checkAffected maps an UPDATE that touched no row to student.ErrNotFound
func checkAffected(res sql.Result, err error, msg string) error {
	if err != nil {
		return errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, studentNumber string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE student_number = $1`, studentNumber)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, "getting student")
	}
	return fromRow(row), nil
}

func (repo *studentRepository) SaveStudent(ctx context.Context, st student.Student) (student.Student, error) {
	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}

	query := `INSERT INTO students (` + studentColumns + `)
		VALUES (:student_number, :full_name, :grade, :section, :guardian_email, :notice,
			:entry_time, :exit_time, :violations, :violations_count, :last_violation_date,
			:last_activity_time, :last_activity_type, :created_at, :updated_at)
		ON CONFLICT (student_number) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			grade = EXCLUDED.grade,
			section = EXCLUDED.section,
			guardian_email = EXCLUDED.guardian_email,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + studentColumns

	rows, err := repo.db.NamedQueryContext(ctx, query, toRow(st))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "saving student")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err == nil {
			err = sql.ErrNoRows
		}
		return student.Student{}, errors.Wrap(err, "saving student")
	}
	var row studentRow
	if err = rows.StructScan(&row); err != nil {
		return student.Student{}, errors.Wrap(err, "scanning student")
	}
	return fromRow(row), nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+studentColumns+` FROM students ORDER BY student_number`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, fromRow(row))
	}
	return students, nil
}

func (repo *studentRepository) UpdatePlacement(ctx context.Context, studentNumber, grade, section string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET grade = $2, section = $3, updated_at = NOW() WHERE student_number = $1`,
		studentNumber, grade, section)
	return checkAffected(res, err, "updating student placement")
}

func (repo *studentRepository) SetNotice(ctx context.Context, studentNumber, notice string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET notice = $2, updated_at = NOW() WHERE student_number = $1`,
		studentNumber, notice)
	return checkAffected(res, err, "setting student notice")
}

func (repo *studentRepository) AppendActivity(ctx context.Context, studentNumber string, typ student.ActivityType, line string, at time.Time) error {
	column := "entry_time"
	if typ == student.Exit {
		column = "exit_time"
	}
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET `+column+` = array_append(`+column+`, $2),
			last_activity_time = $3, last_activity_type = $4, updated_at = NOW()
		WHERE student_number = $1`,
		studentNumber, line, at, string(typ))
	return checkAffected(res, err, "appending activity")
}

func (repo *studentRepository) AppendViolation(ctx context.Context, studentNumber, entry, date string, count int) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET violations = array_append(violations, $2),
			last_violation_date = $3, violations_count = violations_count + $4, updated_at = NOW()
		WHERE student_number = $1`,
		studentNumber, entry, date, count)
	return checkAffected(res, err, "appending violation")
}
