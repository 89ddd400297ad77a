package ports

import (
	"context"

	"waffle-cron/internal/domain/model"
)

// MetricsSink receives one observation per finished run.
type MetricsSink interface {
	Observe(ctx context.Context, run model.RunRecord) error
}
