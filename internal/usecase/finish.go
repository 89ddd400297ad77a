package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

var (
	// ErrTaskFailed is returned when the task's process (or the archive step) failed.
	ErrTaskFailed = errors.New("task failed")
	// ErrNotifyFailed is returned when the outcome notification could not be delivered.
	ErrNotifyFailed = errors.New("notification failed")
)

// reporter closes out a run: notification, ledger record, metrics.
type reporter struct {
	notifier ports.Notifier
	store    ports.RunStore
	metrics  ports.MetricsSink
	logger   ports.Logger
}

func newRunID() string {
	return uuid.NewString()
}

// finish sends the notification and persists the run. Ledger and metrics
// failures are only logged; task and notification failures are returned.
func (r *reporter) finish(ctx context.Context, run model.RunRecord, report model.Report) (model.RunRecord, error) {
	// The outcome is still reported when the run was cancelled.
	sendCtx := context.WithoutCancel(ctx)

	var errs []error
	if run.Outcome == model.OutcomeFailed {
		errs = append(errs, fmt.Errorf("%s: %w", run.Task, ErrTaskFailed))
	}

	notification := FormatNotification(report)
	if err := r.notifier.Send(sendCtx, notification); err != nil {
		r.logger.Error(ctx, "failed to send notification", "task", run.Task, "error", err)
		run.NotifyError = err.Error()
		errs = append(errs, fmt.Errorf("%w: %w", ErrNotifyFailed, err))
	}

	if r.store != nil {
		if err := r.store.Record(sendCtx, run); err != nil {
			r.logger.Error(ctx, "failed to record run", "task", run.Task, "error", err)
		}
	}

	if r.metrics != nil {
		if err := r.metrics.Observe(sendCtx, run); err != nil {
			r.logger.Error(ctx, "failed to write run metrics", "task", run.Task, "error", err)
		}
	}

	r.logger.Info(ctx, "task finished",
		"task", run.Task,
		"outcome", run.Outcome,
		"exit_code", run.ExitCode,
		"elapsed", run.Elapsed().String())

	return run, errors.Join(errs...)
}

func outcomeOf(ok bool) model.Outcome {
	if ok {
		return model.OutcomeSucceeded
	}
	return model.OutcomeFailed
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
