package model

import "time"

// Report carries what a notification says about a finished task.
type Report struct {
	Task        string
	CompletedAt time.Time
	Elapsed     Elapsed
	// ExitCode is nil when the task does not report its exit status.
	ExitCode *int
	Failed   bool
	Detail   string
}

// Succeeded reports whether the report describes a successful run.
func (r Report) Succeeded() bool {
	if r.Failed {
		return false
	}
	return r.ExitCode == nil || *r.ExitCode == 0
}
