package domain

import "time"

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// TransitionRun is the journal entry of one execution of a transition plan.
// LastCompletedStep is 0 before the first step commits.
type TransitionRun struct {
	ID                string
	FromYear          string
	ToYear            string
	PlanJSON          []byte
	Status            RunStatus
	LastCompletedStep int
	FailedStep        int
	Error             string
	StartedAt         time.Time
	FinishedAt        *time.Time
}
