package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/schoolops/rollover/internal/domain"
)

var testStudentCounter atomic.Int64

// Student options
type StudentOption func(*domain.Student)

func WithSex(sex domain.Sex) StudentOption {
	return func(s *domain.Student) {
		s.Sex = sex
	}
}

func WithStudentName(name string) StudentOption {
	return func(s *domain.Student) {
		s.Name = name
	}
}

func WithClassLabel(label string) StudentOption {
	return func(s *domain.Student) {
		s.ClassLabel = label
	}
}

// Graduated makes the fixture an inactive graduate.
func Graduated() StudentOption {
	return func(s *domain.Student) {
		s.Active = false
		s.Grade = domain.GradeGraduated
	}
}

// NextStudentID returns a unique external student id such as "NIS-0007".
func NextStudentID() string {
	return fmt.Sprintf("NIS-%04d", testStudentCounter.Add(1))
}

func NewTestStudent(id string, grade domain.Grade, opts ...StudentOption) *domain.Student {
	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.Student{
		ID:        id,
		Name:      "Student " + id,
		Sex:       domain.SexFemale,
		Grade:     grade,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestGrade builds n active students in grade with generated ids.
func NewTestGrade(grade domain.Grade, n int) []*domain.Student {
	students := make([]*domain.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, NewTestStudent(NextStudentID(), grade))
	}
	return students
}

// Applicant options
type ApplicantOption func(*domain.Applicant)

func WithCandidateID(id string) ApplicantOption {
	return func(a *domain.Applicant) {
		a.CandidateStudentID = id
	}
}

func NotAccepted() ApplicantOption {
	return func(a *domain.Applicant) {
		a.Accepted = false
	}
}

func AlreadyEnrolled() ApplicantOption {
	return func(a *domain.Applicant) {
		a.Enrolled = true
	}
}

func WithApplicantSex(sex domain.Sex) ApplicantOption {
	return func(a *domain.Applicant) {
		a.Sex = sex
	}
}

// NewTestApplicant builds an accepted applicant for targetYear with a
// generated candidate student id.
func NewTestApplicant(name, targetYear string, opts ...ApplicantOption) *domain.Applicant {
	now := time.Now().UTC().Truncate(time.Second)
	a := &domain.Applicant{
		ID:                 uuid.New().String(),
		CandidateStudentID: NextStudentID(),
		Name:               name,
		Sex:                domain.SexMale,
		Accepted:           true,
		TargetYear:         targetYear,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewTestApplicants builds n eligible applicants for targetYear.
func NewTestApplicants(targetYear string, n int) []*domain.Applicant {
	applicants := make([]*domain.Applicant, 0, n)
	for i := 0; i < n; i++ {
		applicants = append(applicants, NewTestApplicant(fmt.Sprintf("Applicant %d", i+1), targetYear))
	}
	return applicants
}

// Teacher options
type TeacherOption func(*domain.Teacher)

func WithAssignment(grade domain.Grade, class string) TeacherOption {
	return func(t *domain.Teacher) {
		t.AssignedGrade = &grade
		t.AssignedClass = class
	}
}

func NewTestTeacher(name string, opts ...TeacherOption) *domain.Teacher {
	t := &domain.Teacher{
		ID:        uuid.New().String(),
		Name:      name,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
