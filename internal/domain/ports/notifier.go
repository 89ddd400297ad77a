package ports

import (
	"context"

	"waffle-cron/internal/domain/model"
)

// Notifier sends notifications to downstream channels (e.g. mail, Discord).
type Notifier interface {
	Send(ctx context.Context, notification model.Notification) error
}
