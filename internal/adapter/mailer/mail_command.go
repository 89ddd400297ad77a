package mailer

import (
	"context"
	"fmt"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

// MailCommand delivers notifications through a mail(1)-compatible utility:
// the body is written to stdin of `<command> -s <subject> <recipients...>`.
type MailCommand struct {
	command    model.Command
	recipients []string
	runner     ports.CommandRunner
	logger     ports.Logger
}

var _ ports.Notifier = (*MailCommand)(nil)

// NewMailCommand creates a mail notifier for the given command line and recipients.
func NewMailCommand(commandLine string, recipients []string, runner ports.CommandRunner, logger ports.Logger) (*MailCommand, error) {
	cmd, err := model.ParseCommand(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse mail command: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no mail recipients configured")
	}
	return &MailCommand{
		command:    cmd,
		recipients: recipients,
		runner:     runner,
		logger:     logger,
	}, nil
}

// Send runs the mail utility and reports a non-zero exit as an error.
func (m *MailCommand) Send(ctx context.Context, notification model.Notification) error {
	args := append([]string{"-s", notification.Subject}, m.recipients...)
	cmd := m.command.WithArgs(args...)
	cmd.Stdin = notification.Body

	code, err := m.runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("run mail command: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("mail command exited with status %d", code)
	}

	if m.logger != nil {
		m.logger.Info(ctx, "notification mailed", "subject", notification.Subject, "recipients", len(m.recipients))
	}
	return nil
}
