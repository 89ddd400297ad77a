package notify

import (
	"context"
	"errors"
	"fmt"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

// CompositeNotifier delivers a notification through every configured notifier.
type CompositeNotifier struct {
	logger    ports.Logger
	notifiers []ports.Notifier
}

var _ ports.Notifier = (*CompositeNotifier)(nil)

// NewCompositeNotifier constructs a notifier that sends through the given notifiers sequentially.
// Nil notifiers are skipped.
func NewCompositeNotifier(logger ports.Logger, notifiers ...ports.Notifier) *CompositeNotifier {
	active := make([]ports.Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &CompositeNotifier{
		logger:    logger,
		notifiers: active,
	}
}

// Send tries every notifier even if an earlier one fails and returns the joined errors.
func (c *CompositeNotifier) Send(ctx context.Context, notification model.Notification) error {
	if len(c.notifiers) == 0 {
		return fmt.Errorf("no notifiers configured")
	}

	var errs []error
	for _, n := range c.notifiers {
		if err := n.Send(ctx, notification); err != nil {
			if c.logger != nil {
				c.logger.Error(ctx, "notifier failed", "error", err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
