package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/lccc/gatelog/core/student"
)

type (
	studentDoc struct {
		StudentNumber     string           `firestore:"studentNumber"`
		FullName          string           `firestore:"fullName"`
		Grade             string           `firestore:"grade"`
		Section           string           `firestore:"section"`
		GuardianEmail     string           `firestore:"guardianEmail,omitempty"`
		Notice            string           `firestore:"notice,omitempty"`
		EntryTime         []string         `firestore:"entryTime"`
		ExitTime          []string         `firestore:"exitTime"`
		Violations        []string         `firestore:"violations"`
		ViolationsCount   int              `firestore:"violationsCount"`
		LastViolationDate string           `firestore:"lastViolationDate,omitempty"`
		LastActivity      *lastActivityDoc `firestore:"lastActivity,omitempty"`
		CreatedAt         time.Time        `firestore:"createdAt,omitempty"`
		UpdatedAt         time.Time        `firestore:"updatedAt,omitempty"`
	}

	// lastActivityDoc.Time is a timestamp, or a locale string in documents written by the legacy server.
	lastActivityDoc struct {
		Time interface{} `firestore:"time"`
		Type string      `firestore:"type"`
	}
)

func (d studentDoc) toStudent() student.Student {
	st := student.Student{
		StudentNumber:     d.StudentNumber,
		FullName:          d.FullName,
		Grade:             d.Grade,
		Section:           d.Section,
		GuardianEmail:     d.GuardianEmail,
		Notice:            d.Notice,
		EntryTime:         d.EntryTime,
		ExitTime:          d.ExitTime,
		Violations:        d.Violations,
		ViolationsCount:   d.ViolationsCount,
		LastViolationDate: d.LastViolationDate,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.LastActivity != nil {
		la := &student.LastActivity{Type: student.ActivityType(d.LastActivity.Type)}
		if t, ok := d.LastActivity.Time.(time.Time); ok {
			la.Time = t
		}
		st.LastActivity = la
	}
	return st
}

func newStudentDoc(st student.Student) studentDoc {
	return studentDoc{
		StudentNumber: st.StudentNumber,
		FullName:      st.FullName,
		Grade:         st.Grade,
		Section:       st.Section,
		GuardianEmail: st.GuardianEmail,
		Notice:        st.Notice,
		EntryTime:     nonNil(st.EntryTime),
		ExitTime:      nonNil(st.ExitTime),
		Violations:    nonNil(st.Violations),
		CreatedAt:     st.CreatedAt,
		UpdatedAt:     st.UpdatedAt,
	}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

type studentRepository struct {
	client *firestore.Client
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(client *firestore.Client) student.Repository {
	return &studentRepository{client: client}
}

func (repo *studentRepository) doc(studentNumber string) *firestore.DocumentRef {
	return repo.client.Collection(studentsCollection).Doc(studentNumber)
}

func (repo *studentRepository) GetStudent(ctx context.Context, studentNumber string) (student.Student, error) {
	if studentNumber == "" {
		return student.Student{}, student.ErrNotFound
	}
	snap, err := repo.doc(studentNumber).Get(ctx)
	if isNotFound(err) {
		return student.Student{}, student.ErrNotFound
	} else if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}

	var d studentDoc
	if err = snap.DataTo(&d); err != nil {
		return student.Student{}, errors.Wrap(err, "decoding student")
	}
	if d.StudentNumber == "" {
		d.StudentNumber = snap.Ref.ID
	}
	return d.toStudent(), nil
}

func (repo *studentRepository) SaveStudent(ctx context.Context, st student.Student) (student.Student, error) {
	ref := repo.doc(st.StudentNumber)
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if isNotFound(err) {
			return tx.Create(ref, newStudentDoc(st))
		} else if err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "studentNumber", Value: st.StudentNumber},
			{Path: "fullName", Value: st.FullName},
			{Path: "grade", Value: st.Grade},
			{Path: "section", Value: st.Section},
			{Path: "guardianEmail", Value: st.GuardianEmail},
			{Path: "updatedAt", Value: st.UpdatedAt},
		})
	})
	if err != nil {
		return student.Student{}, errors.Wrap(err, "saving student")
	}
	return repo.GetStudent(ctx, st.StudentNumber)
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	iter := repo.client.Collection(studentsCollection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "querying students")
		}
		var d studentDoc
		if err = snap.DataTo(&d); err != nil {
			return nil, errors.Wrapf(err, "decoding student %s", snap.Ref.ID)
		}
		if d.StudentNumber == "" {
			d.StudentNumber = snap.Ref.ID
		}
		students = append(students, d.toStudent())
	}
	return students, nil
}

// update fails with student.ErrNotFound when the document does not exist.
func (repo *studentRepository) update(ctx context.Context, studentNumber string, updates ...firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	_, err := repo.doc(studentNumber).Update(ctx, updates)
	if isNotFound(err) {
		return student.ErrNotFound
	}
	return err
}

func (repo *studentRepository) UpdatePlacement(ctx context.Context, studentNumber, grade, section string) error {
	err := repo.update(ctx, studentNumber,
		firestore.Update{Path: "grade", Value: grade},
		firestore.Update{Path: "section", Value: section},
	)
	if err == student.ErrNotFound {
		return err
	}
	return errors.Wrap(err, "updating placement")
}

func (repo *studentRepository) SetNotice(ctx context.Context, studentNumber, notice string) error {
	err := repo.update(ctx, studentNumber, firestore.Update{Path: "notice", Value: notice})
	if err == student.ErrNotFound {
		return err
	}
	return errors.Wrap(err, "setting notice")
}

func (repo *studentRepository) AppendActivity(ctx context.Context, studentNumber string, typ student.ActivityType, line string, at time.Time) error {
	field := "entryTime"
	if typ == student.Exit {
		field = "exitTime"
	}
	err := repo.update(ctx, studentNumber,
		firestore.Update{Path: field, Value: firestore.ArrayUnion(line)},
		firestore.Update{Path: "lastActivity", Value: map[string]interface{}{"time": at, "type": string(typ)}},
	)
	if err == student.ErrNotFound {
		return err
	}
	return errors.Wrap(err, "appending activity")
}

// AppendViolation keeps repeated entries, which ArrayUnion would collapse, so it runs in a transaction.
func (repo *studentRepository) AppendViolation(ctx context.Context, studentNumber, entry, date string, count int) error {
	ref := repo.doc(studentNumber)
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var d studentDoc
		if err = snap.DataTo(&d); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "violations", Value: append(nonNil(d.Violations), entry)},
			{Path: "lastViolationDate", Value: date},
			{Path: "violationsCount", Value: firestore.Increment(count)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if isNotFound(err) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, "appending violation")
}
