package ports

import (
	"context"

	"waffle-cron/internal/domain/model"
)

// CommandRunner executes an external program to completion.
//
// A non-zero exit status is reported through the returned code, not as an error.
// An error means the process could not be started or was cancelled.
type CommandRunner interface {
	Run(ctx context.Context, cmd model.Command) (int, error)
}
