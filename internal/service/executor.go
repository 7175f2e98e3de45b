package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/repository"
	"github.com/schoolops/rollover/internal/transition"
)

// StepResult is the outcome of one executor step.
type StepResult struct {
	Step     transition.Step
	Affected int64
	// Skipped is set for steps a resumed run had already committed.
	Skipped bool
}

// RunResult summarises a completed execution.
type RunResult struct {
	RunID    string
	FromYear string
	NewYear  string
	Resumed  bool
	Steps    []StepResult
}

// Affected returns the rows changed by step, or 0 when it was skipped.
func (r *RunResult) Affected(step transition.Step) int64 {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Affected
		}
	}
	return 0
}

type transitionExecutor struct {
	runs     repository.RunRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

// NewExecutor builds the transition executor. runs must not be bound to a
// transaction: the journal row is created and finalised outside the step
// transactions so that it survives a failed step.
func NewExecutor(runs repository.RunRepo, uow db.UnitOfWork, observers ...UseCaseObserver) Executor {
	return &transitionExecutor{
		runs:     runs,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute applies plan in six sequential steps. Each step commits in its
// own transaction together with the run journal's step marker. A failing
// step returns *transition.StepExecutionError; earlier steps stay applied.
func (e *transitionExecutor) Execute(ctx context.Context, plan *transition.Plan, newYear string) (res *RunResult, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, e.observer, "execute", start, err, map[string]any{
			"from_year": plan.FromYear,
			"new_year":  newYear,
		})
	}()

	if newYear != plan.NewYear {
		return nil, fmt.Errorf("plan moves to %s, not %s", plan.NewYear, newYear)
	}
	if _, err := domain.ParseAcademicYear(newYear); err != nil {
		return nil, err
	}

	snapshot, err := plan.MarshalSnapshot()
	if err != nil {
		return nil, err
	}
	run := &domain.TransitionRun{
		ID:        uuid.New().String(),
		FromYear:  plan.FromYear,
		ToYear:    newYear,
		PlanJSON:  snapshot,
		Status:    domain.RunRunning,
		StartedAt: e.now(),
	}
	if err := e.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("journaling transition run: %w", err)
	}
	return e.runSteps(ctx, run, plan, 0)
}

func (e *transitionExecutor) PendingRun(ctx context.Context) (*domain.TransitionRun, *transition.Plan, error) {
	run, err := e.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, transition.ErrNoFailedRun
		}
		return nil, nil, err
	}
	// A run still marked running outlived its process.
	if run.Status != domain.RunFailed && run.Status != domain.RunRunning {
		return nil, nil, transition.ErrNoFailedRun
	}
	plan, err := transition.UnmarshalPlan(run.PlanJSON)
	if err != nil {
		return nil, nil, err
	}
	return run, plan, nil
}

// Resume re-applies the latest failed or interrupted run's plan snapshot, starting after
// its last completed step.
func (e *transitionExecutor) Resume(ctx context.Context) (res *RunResult, err error) {
	start := time.Now()
	var runID string
	defer func() {
		observe(ctx, e.observer, "resume", start, err, map[string]any{"run_id": runID})
	}()

	run, plan, err := e.PendingRun(ctx)
	if err != nil {
		return nil, err
	}
	runID = run.ID
	if err := e.runs.MarkRunning(ctx, run.ID); err != nil {
		return nil, err
	}
	res, err = e.runSteps(ctx, run, plan, run.LastCompletedStep)
	if res != nil {
		res.Resumed = true
	}
	return res, err
}

func (e *transitionExecutor) runSteps(ctx context.Context, run *domain.TransitionRun, plan *transition.Plan, after int) (*RunResult, error) {
	result := &RunResult{
		RunID:    run.ID,
		FromYear: plan.FromYear,
		NewYear:  run.ToYear,
		Steps:    make([]StepResult, 0, transition.StepCount),
	}

	for _, step := range transition.Steps() {
		if int(step) <= after {
			result.Steps = append(result.Steps, StepResult{Step: step, Skipped: true})
			continue
		}

		stepStart := time.Now()
		affected, err := e.applyStep(ctx, run.ID, step, plan)
		observe(ctx, e.observer, "execute_step", stepStart, err, map[string]any{
			"run_id":    run.ID,
			"step":      int(step),
			"step_name": step.String(),
			"affected":  affected,
		})
		if err != nil {
			stepErr := &transition.StepExecutionError{Step: int(step), Name: step.String(), RunID: run.ID, Err: err}
			if markErr := e.runs.MarkFailed(ctx, run.ID, int(step), err.Error(), e.now()); markErr != nil {
				return result, errors.Join(stepErr, markErr)
			}
			return result, stepErr
		}
		result.Steps = append(result.Steps, StepResult{Step: step, Affected: affected})
	}

	if err := e.runs.MarkCompleted(ctx, run.ID, e.now()); err != nil {
		return result, fmt.Errorf("finalising transition run: %w", err)
	}
	return result, nil
}

// applyStep runs one step and advances the journal marker in the same
// transaction.
func (e *transitionExecutor) applyStep(ctx context.Context, runID string, step transition.Step, plan *transition.Plan) (int64, error) {
	var affected int64
	err := e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		n, err := e.step(ctx, tx, step, plan)
		if err != nil {
			return err
		}
		affected = n
		return repository.NewSQLiteRunRepo(tx).MarkStepCompleted(ctx, runID, int(step))
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (e *transitionExecutor) step(ctx context.Context, tx db.DBTX, step transition.Step, plan *transition.Plan) (int64, error) {
	now := e.now()
	students := repository.NewSQLiteStudentRepo(tx)
	applicants := repository.NewSQLiteApplicantRepo(tx)

	switch step {
	case transition.StepGraduate:
		return students.Graduate(ctx, plan.Graduation, now)

	case transition.StepPromote:
		var total int64
		for _, g := range plan.TargetGrades() {
			n, err := students.SetGrade(ctx, plan.Promotions[g], g, now)
			total += n
			if err != nil {
				return total, err
			}
		}
		return total, nil

	case transition.StepEnroll:
		var inserted int64
		for _, enrollee := range plan.Enrollment {
			a, err := applicants.GetByID(ctx, enrollee.ApplicantID)
			if err != nil {
				return inserted, err
			}
			// Already enrolled by an earlier run.
			if a.Enrolled {
				continue
			}
			ok, err := students.InsertIfAbsent(ctx, &domain.Student{
				ID:        enrollee.StudentID,
				Name:      enrollee.Name,
				Sex:       enrollee.Sex,
				Grade:     domain.MinGrade,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return inserted, err
			}
			if ok {
				inserted++
				continue
			}
			// The id was taken: accept it only if it is this enrollee's record.
			if err := checkOwnRecord(ctx, students, enrollee); err != nil {
				return inserted, err
			}
		}
		return inserted, nil

	case transition.StepMarkEnrolled:
		ids := make([]string, 0, len(plan.Enrollment))
		for _, enrollee := range plan.Enrollment {
			a, err := applicants.GetByID(ctx, enrollee.ApplicantID)
			if err != nil {
				return 0, err
			}
			if a.Enrolled {
				continue
			}
			if err := checkOwnRecord(ctx, students, enrollee); err != nil {
				return 0, err
			}
			ids = append(ids, enrollee.ApplicantID)
		}
		return applicants.MarkEnrolled(ctx, ids, now)

	case transition.StepResetAssignments:
		return repository.NewSQLiteTeacherRepo(tx).ResetAssignments(ctx, now)

	case transition.StepAdvanceYear:
		years := repository.NewSQLiteAcademicYearRepo(tx)
		current, err := years.Get(ctx)
		if err != nil {
			return 0, err
		}
		if current.Period == plan.NewYear {
			return 0, nil
		}
		if _, err := years.CompareAndSwap(ctx, plan.YearVersion, plan.NewYear, now); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return 0, fmt.Errorf("unknown step %d", step)
}

// checkOwnRecord verifies that the student stored under the enrollee's id is
// the grade-1 record enrollment created for it. Anything else is an
// identifier conflict that appeared after planning.
func checkOwnRecord(ctx context.Context, students *repository.SQLiteStudentRepo, e transition.Enrollee) error {
	s, err := students.GetByID(ctx, e.StudentID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if s != nil && s.Name == e.Name && s.Sex == e.Sex && s.Grade == domain.MinGrade && s.Active {
		return nil
	}
	return &transition.ConflictError{Conflicts: []transition.Conflict{{
		ApplicantID: e.ApplicantID,
		CandidateID: e.StudentID,
		Name:        e.Name,
		Kind:        transition.ConflictExistingStudent,
	}}}
}
