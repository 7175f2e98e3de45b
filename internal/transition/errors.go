package transition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecutionInProgress is returned when another execution holds the permit.
	ErrExecutionInProgress = errors.New("a transition is already executing")

	// ErrStalePlan is returned when the roster or academic-year marker changed
	// after the plan was computed.
	ErrStalePlan = errors.New("plan is stale, re-plan before executing")

	// ErrInvalidWorkflowState is returned for an operation the current
	// workflow state does not allow.
	ErrInvalidWorkflowState = errors.New("invalid workflow state")

	// ErrNoFailedRun is returned by resume when there is nothing to resume.
	ErrNoFailedRun = errors.New("no failed transition run to resume")

	// ErrFailedRunPending is returned by plan and execute while the latest
	// run is failed or interrupted. Its steps are partially applied, so a new
	// plan would be computed from a half-transitioned roster.
	ErrFailedRunPending = errors.New("an unfinished transition run must be completed with `rollover resume` first")
)

// StorageReadError wraps a read failure while loading or planning.
// Nothing was mutated; the operation can be retried.
type StorageReadError struct {
	Op  string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("storage read failed (%s): %v", e.Op, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// ConflictError reports applicants whose identifiers collide with existing
// students. It never aborts planning; the conflicting applicants are left
// out of the enrollment set.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.CandidateID)
	}
	return fmt.Sprintf("%d identifier conflict(s): %s", len(e.Conflicts), strings.Join(ids, ", "))
}

type RejectReason string

const (
	RejectDeclined      RejectReason = "summary declined"
	RejectTokenMismatch RejectReason = "confirmation token mismatch"
)

// ConfirmationRejectedError is returned when the operator declines the
// summary or types the wrong confirmation token. No state was mutated.
type ConfirmationRejectedError struct {
	Reason RejectReason
}

func (e *ConfirmationRejectedError) Error() string {
	return fmt.Sprintf("confirmation rejected: %s", e.Reason)
}

// StepExecutionError reports the executor step whose write failed. Steps
// before Step are persisted; Step and later are not.
type StepExecutionError struct {
	Step  int
	Name  string
	RunID string
	Err   error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Step, e.Name, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }
