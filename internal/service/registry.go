package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/repository"
)

type StudentInput struct {
	ID         string `validate:"required,max=32"`
	Name       string `validate:"required,max=120"`
	Sex        string `validate:"required,oneof=M F"`
	Grade      int    `validate:"min=1,max=6"`
	ClassLabel string `validate:"max=16"`
}

type ApplicantInput struct {
	CandidateStudentID string `validate:"omitempty,max=32"`
	Name               string `validate:"required,max=120"`
	Sex                string `validate:"required,oneof=M F"`
	TargetYear         string `validate:"required,academic_year"`
	Accepted           bool
}

type TeacherInput struct {
	Name string `validate:"required,max=120"`
}

type AssignmentInput struct {
	TeacherID string `validate:"required"`
	Grade     int    `validate:"min=1,max=6"`
	Class     string `validate:"max=16"`
}

// ValidationError lists the rejected fields of an input as "field: rule".
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Fields, ", ")
}

type registryService struct {
	students   repository.StudentRepo
	applicants repository.ApplicantRepo
	teachers   repository.TeacherRepo
	years      repository.AcademicYearRepo
	validate   *validator.Validate
	now        func() time.Time
}

// NewRegistryService builds the service that maintains the records a
// transition operates on.
func NewRegistryService(
	students repository.StudentRepo,
	applicants repository.ApplicantRepo,
	teachers repository.TeacherRepo,
	years repository.AcademicYearRepo,
) RegistryService {
	return &registryService{
		students:   students,
		applicants: applicants,
		teachers:   teachers,
		years:      years,
		validate:   newValidator(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseAcademicYear(fl.Field().String())
		return err == nil
	})
	return v
}

func (s *registryService) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	return &ValidationError{Fields: fields}
}

func (s *registryService) AddStudent(ctx context.Context, in StudentInput) (*domain.Student, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	st := &domain.Student{
		ID:         strings.TrimSpace(in.ID),
		Name:       strings.TrimSpace(in.Name),
		Sex:        domain.Sex(in.Sex),
		Grade:      domain.Grade(in.Grade),
		Active:     true,
		ClassLabel: in.ClassLabel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.students.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *registryService) ListStudents(ctx context.Context, includeInactive bool) ([]*domain.Student, error) {
	if includeInactive {
		return s.students.ListAll(ctx)
	}
	return s.students.ListActive(ctx)
}

func (s *registryService) AddApplicant(ctx context.Context, in ApplicantInput) (*domain.Applicant, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	a := &domain.Applicant{
		ID:                 uuid.New().String(),
		CandidateStudentID: strings.TrimSpace(in.CandidateStudentID),
		Name:               strings.TrimSpace(in.Name),
		Sex:                domain.Sex(in.Sex),
		Accepted:           in.Accepted,
		TargetYear:         in.TargetYear,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.applicants.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *registryService) ListApplicants(ctx context.Context) ([]*domain.Applicant, error) {
	return s.applicants.List(ctx)
}

func (s *registryService) AddTeacher(ctx context.Context, in TeacherInput) (*domain.Teacher, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	t := &domain.Teacher{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		UpdatedAt: s.now(),
	}
	if err := s.teachers.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *registryService) AssignTeacher(ctx context.Context, in AssignmentInput) error {
	if err := s.check(in); err != nil {
		return err
	}
	return s.teachers.Assign(ctx, in.TeacherID, domain.Grade(in.Grade), in.Class, s.now())
}

func (s *registryService) ListTeachers(ctx context.Context) ([]*domain.Teacher, error) {
	return s.teachers.List(ctx)
}

func (s *registryService) GetYear(ctx context.Context) (domain.AcademicYear, error) {
	return s.years.Get(ctx)
}

func (s *registryService) SetYear(ctx context.Context, period string) (domain.AcademicYear, error) {
	if _, err := domain.ParseAcademicYear(period); err != nil {
		return domain.AcademicYear{}, fmt.Errorf("setting academic year: %w", err)
	}
	return s.years.Set(ctx, period, s.now())
}
