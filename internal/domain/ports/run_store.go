package ports

import (
	"context"

	"waffle-cron/internal/domain/model"
)

// RunStore persists run records.
type RunStore interface {
	Record(ctx context.Context, run model.RunRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]model.RunRecord, error)
}
