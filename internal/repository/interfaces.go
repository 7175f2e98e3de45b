package repository

import (
	"context"
	"errors"
	"time"

	"github.com/schoolops/rollover/internal/domain"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by a compare-and-swap write whose
	// expected version no longer matches the stored one.
	ErrVersionConflict = errors.New("version conflict")
)

type StudentRepo interface {
	Create(ctx context.Context, s *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	ListActive(ctx context.Context) ([]*domain.Student, error)
	ListAll(ctx context.Context) ([]*domain.Student, error)
	ListIDs(ctx context.Context) ([]string, error)
	CountActiveByGrade(ctx context.Context) (map[domain.Grade]int, error)
	Graduate(ctx context.Context, ids []string, now time.Time) (int64, error)
	SetGrade(ctx context.Context, ids []string, grade domain.Grade, now time.Time) (int64, error)
	InsertIfAbsent(ctx context.Context, s *domain.Student) (bool, error)
}

type ApplicantRepo interface {
	Create(ctx context.Context, a *domain.Applicant) error
	GetByID(ctx context.Context, id string) (*domain.Applicant, error)
	List(ctx context.Context) ([]*domain.Applicant, error)
	ListEligible(ctx context.Context, targetYear string) ([]*domain.Applicant, error)
	MarkEnrolled(ctx context.Context, ids []string, now time.Time) (int64, error)
}

type TeacherRepo interface {
	Create(ctx context.Context, t *domain.Teacher) error
	List(ctx context.Context) ([]*domain.Teacher, error)
	Assign(ctx context.Context, id string, grade domain.Grade, class string, now time.Time) error
	ResetAssignments(ctx context.Context, now time.Time) (int64, error)
}

type AcademicYearRepo interface {
	Get(ctx context.Context) (domain.AcademicYear, error)
	Set(ctx context.Context, period string, now time.Time) (domain.AcademicYear, error)
	CompareAndSwap(ctx context.Context, expectedVersion int64, period string, now time.Time) (domain.AcademicYear, error)
}

type RunRepo interface {
	Create(ctx context.Context, r *domain.TransitionRun) error
	GetByID(ctx context.Context, id string) (*domain.TransitionRun, error)
	Latest(ctx context.Context) (*domain.TransitionRun, error)
	MarkStepCompleted(ctx context.Context, id string, step int) error
	MarkRunning(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, step int, errMsg string, now time.Time) error
	MarkCompleted(ctx context.Context, id string, now time.Time) error
}

type PermitRepo interface {
	TryAcquire(ctx context.Context, name, holder string, now time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, holder string) error
}
