package model

import (
	"fmt"
	"time"
)

// Invocation is a single synchronous execution of an external program.
type Invocation struct {
	Command    Command
	StartedAt  time.Time
	FinishedAt time.Time
	ExitCode   int
}

// Succeeded reports whether the process exited with status 0.
func (i Invocation) Succeeded() bool {
	return i.ExitCode == 0
}

// Duration returns the wall-clock time between start and finish, never negative.
func (i Invocation) Duration() time.Duration {
	d := i.FinishedAt.Sub(i.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Elapsed returns the duration split into whole minutes and remaining seconds.
func (i Invocation) Elapsed() Elapsed {
	return SplitElapsed(i.Duration())
}

// Elapsed is an elapsed time in whole minutes and remaining seconds.
type Elapsed struct {
	Minutes int
	Seconds int
}

// SplitElapsed truncates d to whole seconds T and returns T/60 minutes and T%60 seconds.
func SplitElapsed(d time.Duration) Elapsed {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Elapsed{
		Minutes: total / 60,
		Seconds: total % 60,
	}
}

// TotalSeconds recombines the components.
func (e Elapsed) TotalSeconds() int {
	return e.Minutes*60 + e.Seconds
}

func (e Elapsed) String() string {
	return fmt.Sprintf("%d minutes, %d seconds", e.Minutes, e.Seconds)
}
