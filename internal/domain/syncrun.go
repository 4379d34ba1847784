package domain

import "time"

// Outcome is what a push did with one change.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	// OutcomePending marks changes left untouched by an aborted push.
	OutcomePending Outcome = "pending"
)

// SyncRun is one journaled, non-dry-run push.
type SyncRun struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	ContainerNumber int
	LocalPath       string
	Created         int
	Updated         int
	Failed          int
	Skipped         int
	Linked          int
	Aborted         bool
	// Error is the reason an aborted run stopped.
	Error string
}

// SyncItemOutcome is the journaled result of one change within a run.
type SyncItemOutcome struct {
	RunID   string
	Seq     int
	Key     string
	Number  int
	Kind    ChangeKind
	Outcome Outcome
	Message string
}
