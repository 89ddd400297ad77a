package clock

import (
	"time"

	"waffle-cron/internal/domain/ports"
)

// Local reads the local wall clock. Readings carry Go's monotonic component,
// so differences between them are immune to wall-clock steps.
type Local struct{}

var _ ports.Clock = Local{}

// Now returns the current local time.
func (Local) Now() time.Time {
	return time.Now()
}
