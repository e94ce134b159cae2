package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lccc/gatelog/core"
)

// ActivityType is the kind of a recorded gate activity.
type ActivityType string

const (
	Entry ActivityType = "entry"
	Exit  ActivityType = "exit"
)

// Label is the capitalized form used in log lines and messages.
func (t ActivityType) Label() string {
	if t == Exit {
		return "Exit"
	}
	return "Entry"
}

type LastActivity struct {
	Time time.Time    `json:"time"`
	Type ActivityType `json:"type"`
}

type Student struct {
	StudentNumber     string        `json:"studentNumber"`
	FullName          string        `json:"fullName"`
	Grade             string        `json:"grade"`
	Section           string        `json:"section"`
	GuardianEmail     string        `json:"guardianEmail,omitempty"`
	Notice            string        `json:"notice,omitempty"`
	EntryTime         []string      `json:"entryTime"`
	ExitTime          []string      `json:"exitTime"`
	Violations        []string      `json:"violations"`
	ViolationsCount   int           `json:"violationsCount"`
	LastViolationDate string        `json:"lastViolationDate,omitempty"`
	LastActivity      *LastActivity `json:"lastActivity,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"` // UTC
	UpdatedAt         time.Time     `json:"updatedAt"` // UTC
}

// Folder is the blob folder holding every file of the student.
func (s Student) Folder() string {
	return FolderPath(s.Grade, s.Section, s.StudentNumber)
}

func (s Student) MainFile() string       { return s.Folder() + s.StudentNumber + "_main.txt" }
func (s Student) ActivityFile() string   { return s.Folder() + s.StudentNumber + "_activity.txt" }
func (s Student) ViolationsFile() string { return s.Folder() + s.StudentNumber + "_violations.txt" }

// MainHeader is the fixed 4-line identity block opening the main file.
func (s Student) MainHeader() string {
	return fmt.Sprintf("Student Number: %s\nFull Name: %s\nGrade: %s\nSection: %s\n",
		s.StudentNumber, s.FullName, s.Grade, s.Section)
}

// FolderPath returns "students/<grade>/<section>/<studentNumber>/".
func FolderPath(grade, section, studentNumber string) string {
	return "students/" + grade + "/" + section + "/" + studentNumber + "/"
}

// ParseMainHeader reads the grade and section back from a main file.
func ParseMainHeader(content string) (grade, section string) {
	for _, line := range strings.Split(content, "\n") {
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Grade":
			grade = strings.TrimSpace(val)
		case "Section":
			section = strings.TrimSpace(val)
		}
	}
	return grade, section
}

// NewStudent contains information needed to enroll a Student.
type NewStudent struct {
	StudentNumber string `json:"studentNumber" validate:"required,studentnum"`
	FullName      string `json:"fullName" validate:"required,notblank"`
	Grade         string `json:"grade" validate:"required,grade"`
	Section       string `json:"section" validate:"required,section"`
	GuardianEmail string `json:"guardianEmail" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	ns.FullName = strings.Join(strings.Fields(ns.FullName), " ")
	ns.Grade = core.CleanString(ns.Grade)
	ns.Section = core.CleanString(ns.Section)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	return validate.Struct(ns)
}

// Info is the kiosk summary of a Student.
type Info struct {
	StudentNumber  string `json:"studentNumber"`
	FullName       string `json:"fullName"`
	LastViolations string `json:"lastViolations"`
	Details        string `json:"details"`
}
