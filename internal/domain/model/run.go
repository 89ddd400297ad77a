package model

import "time"

// Outcome is the final state of a run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// RunRecord is the persisted summary of one task run.
type RunRecord struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	Command     string    `json:"command"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	ExitCode    int       `json:"exit_code"`
	Outcome     Outcome   `json:"outcome"`
	Detail      string    `json:"detail,omitempty"`
	NotifyError string    `json:"notify_error,omitempty"`
}

// Elapsed returns the run's elapsed time.
func (r RunRecord) Elapsed() Elapsed {
	return SplitElapsed(r.FinishedAt.Sub(r.StartedAt))
}
