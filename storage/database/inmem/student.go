package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/lccc/gatelog/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

// clone detaches the returned record from the stored one.
func clone(st student.Student) student.Student {
	st.EntryTime = append([]string{}, st.EntryTime...)
	st.ExitTime = append([]string{}, st.ExitTime...)
	st.Violations = append([]string{}, st.Violations...)
	if st.LastActivity != nil {
		la := *st.LastActivity
		st.LastActivity = &la
	}
	return st
}

func (repo *studentRepository) GetStudent(_ context.Context, studentNumber string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.table[studentNumber]; ok {
		return clone(*st), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) SaveStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, ok := repo.db.table[st.StudentNumber]; ok {
		existing.FullName = st.FullName
		existing.Grade = st.Grade
		existing.Section = st.Section
		existing.GuardianEmail = st.GuardianEmail
		existing.UpdatedAt = st.UpdatedAt
		return clone(*existing), nil
	}
	st = clone(st)
	repo.db.table[st.StudentNumber] = &st
	return clone(st), nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, clone(*st))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].StudentNumber < students[j].StudentNumber })
	return students, nil
}

// update runs fn on the stored record under the write lock.
func (repo *studentRepository) update(studentNumber string, fn func(st *student.Student)) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	st, ok := repo.db.table[studentNumber]
	if !ok {
		return student.ErrNotFound
	}
	fn(st)
	st.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *studentRepository) UpdatePlacement(_ context.Context, studentNumber, grade, section string) error {
	return repo.update(studentNumber, func(st *student.Student) {
		st.Grade = grade
		st.Section = section
	})
}

func (repo *studentRepository) SetNotice(_ context.Context, studentNumber, notice string) error {
	return repo.update(studentNumber, func(st *student.Student) {
		st.Notice = notice
	})
}

func (repo *studentRepository) AppendActivity(_ context.Context, studentNumber string, typ student.ActivityType, line string, at time.Time) error {
	return repo.update(studentNumber, func(st *student.Student) {
		if typ == student.Exit {
			st.ExitTime = append(st.ExitTime, line)
		} else {
			st.EntryTime = append(st.EntryTime, line)
		}
		st.LastActivity = &student.LastActivity{Time: at, Type: typ}
	})
}

func (repo *studentRepository) AppendViolation(_ context.Context, studentNumber, entry, date string, count int) error {
	return repo.update(studentNumber, func(st *student.Student) {
		st.Violations = append(st.Violations, entry)
		st.LastViolationDate = date
		st.ViolationsCount += count
	})
}
