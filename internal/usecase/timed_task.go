package usecase

import (
	"context"
	"fmt"
	"time"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

// TaskSpec describes one timed task.
type TaskSpec struct {
	// Name identifies the task in logs, the ledger and the CLI.
	Name string
	// Title is the human-readable task name used in notifications.
	Title   string
	Command model.Command
	// ReportExitStatus adds the exit status to the notification.
	ReportExitStatus bool
	// Timeout bounds the run; zero means the run may block indefinitely.
	Timeout time.Duration
}

// TimedTask runs one external command, times it and notifies about the outcome.
type TimedTask struct {
	commands ports.CommandRunner
	clock    ports.Clock
	logger   ports.Logger
	reporter reporter
}

// NewTimedTask constructs a TimedTask use case. store and metrics may be nil.
func NewTimedTask(
	commands ports.CommandRunner,
	notifier ports.Notifier,
	store ports.RunStore,
	metrics ports.MetricsSink,
	clock ports.Clock,
	logger ports.Logger,
) *TimedTask {
	return &TimedTask{
		commands: commands,
		clock:    clock,
		logger:   logger,
		reporter: reporter{
			notifier: notifier,
			store:    store,
			metrics:  metrics,
			logger:   logger,
		},
	}
}

// Run executes the task synchronously. The returned error wraps ErrTaskFailed
// when the command exited non-zero or could not be run, and ErrNotifyFailed
// when the notification could not be delivered.
func (t *TimedTask) Run(ctx context.Context, spec TaskSpec) (model.RunRecord, error) {
	t.logger.Info(ctx, "starting task", "task", spec.Name, "command", spec.Command.String())

	runCtx, cancel := withTimeout(ctx, spec.Timeout)
	defer cancel()

	inv := model.Invocation{Command: spec.Command, StartedAt: t.clock.Now()}
	code, runErr := t.commands.Run(runCtx, spec.Command)
	inv.FinishedAt = t.clock.Now()
	inv.ExitCode = code

	run := model.RunRecord{
		ID:         newRunID(),
		Task:       spec.Name,
		Command:    spec.Command.String(),
		StartedAt:  inv.StartedAt,
		FinishedAt: inv.FinishedAt,
		ExitCode:   inv.ExitCode,
		Outcome:    outcomeOf(runErr == nil && inv.Succeeded()),
	}

	report := model.Report{
		Task:        spec.Title,
		CompletedAt: inv.FinishedAt,
		Elapsed:     inv.Elapsed(),
		Failed:      run.Outcome == model.OutcomeFailed,
	}

	if runErr != nil {
		t.logger.Error(ctx, "task could not be run", "task", spec.Name, "error", runErr)
		run.Detail = fmt.Sprintf("Could not run %s: %v", spec.Command.String(), runErr)
		report.Detail = run.Detail
	} else if spec.ReportExitStatus {
		exitCode := inv.ExitCode
		report.ExitCode = &exitCode
	}

	return t.reporter.finish(ctx, run, report)
}
