package transition

import "fmt"

type State string

const (
	StateIdle      State = "idle"
	StatePlanReady State = "plan_ready"
	StateSimulated State = "simulated"
	StateConfirmed State = "confirmed"
	StateExecuting State = "executing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// transitions lists the allowed workflow moves. Simulating is re-entrant,
// and re-planning is allowed until execution starts.
var transitions = map[State][]State{
	StateIdle:      {StatePlanReady},
	StatePlanReady: {StatePlanReady, StateSimulated, StateConfirmed},
	StateSimulated: {StatePlanReady, StateSimulated, StateConfirmed},
	StateConfirmed: {StatePlanReady, StateExecuting},
	StateExecuting: {StateCompleted, StateFailed},
	StateCompleted: {},
	StateFailed:    {StateExecuting},
}

// CanTransition reports whether the workflow may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidWorkflowState when the move is not allowed.
func CheckTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidWorkflowState, from, to)
	}
	return nil
}

// IsTerminal reports whether no further automatic transition is possible.
// A failed workflow only moves again when an operator resumes it.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}
