package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schoolops/rollover/internal/repository"
	"github.com/schoolops/rollover/internal/transition"
)

// PermitName is the execution permit shared by every process that opens
// the same database.
const PermitName = "academic-year-transition"

// DefaultPermitTTL bounds how long a crashed process can hold the permit.
const DefaultPermitTTL = 30 * time.Minute

// WorkflowConfig holds the policy knobs of a Workflow.
type WorkflowConfig struct {
	Policy    transition.CapacityPolicy
	PermitTTL time.Duration
}

// Workflow drives one planning cycle through plan, simulate, confirm and
// execute, enforcing the transition state machine and the execution permit.
type Workflow struct {
	loader   RosterLoader
	gate     *ConfirmationGate
	executor Executor
	permits  repository.PermitRepo
	cfg      WorkflowConfig
	observer UseCaseObserver

	exec sync.Mutex

	mu         sync.Mutex
	state      transition.State
	plan       *transition.Plan
	roster     *transition.Roster
	report     *transition.SimulationReport
	simulated  bool
	failedStep int
}

func NewWorkflow(
	loader RosterLoader,
	gate *ConfirmationGate,
	executor Executor,
	permits repository.PermitRepo,
	cfg WorkflowConfig,
	observers ...UseCaseObserver,
) *Workflow {
	if cfg.PermitTTL <= 0 {
		cfg.PermitTTL = DefaultPermitTTL
	}
	return &Workflow{
		loader:   loader,
		gate:     gate,
		executor: executor,
		permits:  permits,
		cfg:      cfg,
		observer: useCaseObserverOrNoop(observers),
		state:    transition.StateIdle,
	}
}

func (w *Workflow) State() transition.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// FailedStep returns the step that failed when the workflow is in StateFailed.
func (w *Workflow) FailedStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failedStep
}

// CurrentPlan returns the plan of the running cycle, or nil before Plan.
func (w *Workflow) CurrentPlan() *transition.Plan {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.plan
}

// Plan reads a fresh roster and applicant list and computes the plan.
// Re-planning replaces the current plan and clears any simulation. While the
// latest run is unfinished it returns transition.ErrFailedRunPending.
func (w *Workflow) Plan(ctx context.Context) (plan *transition.Plan, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{}
		if plan != nil {
			fields["promoted"] = plan.PromotedCount()
			fields["graduated"] = plan.GraduatedCount()
			fields["enrolled"] = plan.EnrolledCount()
			fields["conflicts"] = len(plan.Conflicts)
		}
		observe(ctx, w.observer, "plan", start, err, fields)
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := transition.CheckTransition(w.state, transition.StatePlanReady); err != nil {
		return nil, err
	}
	if err := w.checkNoPendingRun(ctx); err != nil {
		return nil, err
	}

	roster, err := w.loader.LoadRoster(ctx)
	if err != nil {
		return nil, err
	}
	next, err := roster.Year.Next()
	if err != nil {
		return nil, fmt.Errorf("computing next academic year: %w", err)
	}
	applicants, err := w.loader.LoadApplicants(ctx, next.Period)
	if err != nil {
		return nil, err
	}
	plan, err = transition.ComputePlan(roster, applicants, roster.Year)
	if err != nil {
		return nil, err
	}

	w.plan, w.roster, w.report = plan, roster, nil
	w.simulated = false
	w.state = transition.StatePlanReady
	return plan, nil
}

// Simulate projects the current plan. It never touches storage and may be
// repeated any number of times.
func (w *Workflow) Simulate(ctx context.Context) (report *transition.SimulationReport, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{}
		if report != nil {
			fields["valid"] = report.IsValid
			fields["warnings"] = len(report.Warnings)
		}
		observe(ctx, w.observer, "simulate", start, err, fields)
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := transition.CheckTransition(w.state, transition.StateSimulated); err != nil {
		return nil, err
	}
	report = transition.Simulate(w.plan, w.roster, w.cfg.Policy)
	w.report = report
	w.simulated = true
	w.state = transition.StateSimulated
	return report, nil
}

// Confirm runs the confirmation gate. On rejection the workflow state is
// unchanged. When the policy makes conflicts blocking, a plan with
// conflicts is refused before any prompt.
func (w *Workflow) Confirm(ctx context.Context, p Prompter) error {
	w.mu.Lock()
	if err := transition.CheckTransition(w.state, transition.StateConfirmed); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.cfg.Policy.ConflictsBlock && w.plan.HasConflicts() {
		w.mu.Unlock()
		return w.plan.ConflictErr()
	}
	plan, simulated := w.plan, w.simulated
	w.mu.Unlock()

	// The prompts can take as long as the operator does; the lock is not held.
	if err := w.gate.Confirm(ctx, plan, simulated, p); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.plan != plan || w.simulated != simulated {
		return fmt.Errorf("%w: the plan changed during confirmation", transition.ErrInvalidWorkflowState)
	}
	if err := transition.CheckTransition(w.state, transition.StateConfirmed); err != nil {
		return err
	}
	w.state = transition.StateConfirmed
	return nil
}

// Execute applies the confirmed plan while holding the execution permit.
// A concurrent execution in this or another process yields
// transition.ErrExecutionInProgress.
func (w *Workflow) Execute(ctx context.Context) (*RunResult, error) {
	release, err := w.acquirePermit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	w.mu.Lock()
	if err := transition.CheckTransition(w.state, transition.StateExecuting); err != nil || w.state == transition.StateFailed {
		w.mu.Unlock()
		if err == nil {
			err = fmt.Errorf("%w: a failed run must be resumed", transition.ErrInvalidWorkflowState)
		}
		return nil, err
	}
	if err := w.checkNoPendingRun(ctx); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	plan := w.plan
	w.state = transition.StateExecuting
	w.mu.Unlock()

	res, err := w.executor.Execute(ctx, plan, plan.NewYear)
	w.finish(err, transition.StateConfirmed)
	return res, err
}

// Resume confirms and resumes the latest failed run recorded in storage.
// It does not depend on this workflow having executed the run.
func (w *Workflow) Resume(ctx context.Context, p Prompter) (*RunResult, error) {
	release, err := w.acquirePermit(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	w.mu.Lock()
	if w.state == transition.StateExecuting {
		w.mu.Unlock()
		return nil, transition.ErrExecutionInProgress
	}
	previous := w.state
	w.mu.Unlock()

	run, plan, err := w.executor.PendingRun(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.gate.ConfirmResume(ctx, plan, run.LastCompletedStep, p); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.plan = plan
	w.state = transition.StateExecuting
	w.mu.Unlock()

	res, err := w.executor.Resume(ctx)
	w.finish(err, previous)
	return res, err
}

func (w *Workflow) checkNoPendingRun(ctx context.Context) error {
	run, _, err := w.executor.PendingRun(ctx)
	switch {
	case err == nil:
		return fmt.Errorf("%w: run %s is %s after step %d", transition.ErrFailedRunPending, run.ID, run.Status, run.LastCompletedStep)
	case errors.Is(err, transition.ErrNoFailedRun):
		return nil
	default:
		return err
	}
}

// finish records the outcome of an execution. Errors raised before any
// step ran put the workflow back into fallback.
func (w *Workflow) finish(err error, fallback transition.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var stepErr *transition.StepExecutionError
	switch {
	case err == nil:
		w.state = transition.StateCompleted
		w.failedStep = 0
	case errors.As(err, &stepErr):
		w.state = transition.StateFailed
		w.failedStep = stepErr.Step
	default:
		w.state = fallback
	}
}

func (w *Workflow) acquirePermit(ctx context.Context) (func(), error) {
	if !w.exec.TryLock() {
		return nil, transition.ErrExecutionInProgress
	}
	holder := uuid.New().String()
	ok, err := w.permits.TryAcquire(ctx, PermitName, holder, time.Now().UTC(), w.cfg.PermitTTL)
	if err != nil {
		w.exec.Unlock()
		return nil, err
	}
	if !ok {
		w.exec.Unlock()
		return nil, transition.ErrExecutionInProgress
	}
	return func() {
		start := time.Now()
		if err := w.permits.Release(context.WithoutCancel(ctx), PermitName, holder); err != nil {
			observe(ctx, w.observer, "release_permit", start, err, map[string]any{
				"permit": PermitName,
				"holder": holder,
			})
		}
		w.exec.Unlock()
	}, nil
}
