package ports

import "time"

// Clock reads the current time.
type Clock interface {
	Now() time.Time
}
