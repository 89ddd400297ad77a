package logging

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"waffle-cron/internal/domain/ports"
)

// ZeroLogger adapts zerolog.Logger to ports.Logger. It is used for
// human-readable console output when a task is run by hand.
type ZeroLogger struct {
	logger zerolog.Logger
}

var _ ports.Logger = (*ZeroLogger)(nil)

// NewConsole creates a ZeroLogger writing colourless console lines to w.
func NewConsole(w io.Writer) *ZeroLogger {
	out := zerolog.ConsoleWriter{Out: w, NoColor: true}
	return &ZeroLogger{logger: zerolog.New(out).With().Timestamp().Logger()}
}

// NewZero wraps an existing zerolog.Logger.
func NewZero(logger zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{logger: logger}
}

// Info logs an informational message.
func (l *ZeroLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.Info().Fields(args).Msg(msg)
}

// Error logs an error message.
func (l *ZeroLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.Error().Fields(args).Msg(msg)
}
