package service

import (
	"context"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/transition"
)

// RosterLoader reads the inputs of a planning cycle. Every call reads the
// store afresh.
type RosterLoader interface {
	LoadRoster(ctx context.Context) (*transition.Roster, error)
	LoadApplicants(ctx context.Context, targetYear string) ([]*domain.Applicant, error)
}

// Executor applies a confirmed plan to storage.
type Executor interface {
	Execute(ctx context.Context, plan *transition.Plan, newYear string) (*RunResult, error)
	// PendingRun returns the most recent run if it failed or was interrupted
	// while running, with its plan snapshot. Callers resuming it must hold
	// the execution permit, which rules out a live run.
	PendingRun(ctx context.Context) (*domain.TransitionRun, *transition.Plan, error)
	Resume(ctx context.Context) (*RunResult, error)
}

// Prompter collects the operator's two confirmation answers.
type Prompter interface {
	// Acknowledge shows the plan summary and reports whether the operator accepted it.
	Acknowledge(ctx context.Context, summary transition.PlanSummary) (bool, error)
	// TypeToken asks the operator to type the confirmation token and returns
	// exactly what was typed.
	TypeToken(ctx context.Context, expected string) (string, error)
}

type StatusService interface {
	GetStatus(ctx context.Context) (*Status, error)
}

type RegistryService interface {
	AddStudent(ctx context.Context, in StudentInput) (*domain.Student, error)
	ListStudents(ctx context.Context, includeInactive bool) ([]*domain.Student, error)
	AddApplicant(ctx context.Context, in ApplicantInput) (*domain.Applicant, error)
	ListApplicants(ctx context.Context) ([]*domain.Applicant, error)
	AddTeacher(ctx context.Context, in TeacherInput) (*domain.Teacher, error)
	AssignTeacher(ctx context.Context, in AssignmentInput) error
	ListTeachers(ctx context.Context) ([]*domain.Teacher, error)
	GetYear(ctx context.Context) (domain.AcademicYear, error)
	SetYear(ctx context.Context, period string) (domain.AcademicYear, error)
}
