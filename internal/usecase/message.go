package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"waffle-cron/internal/domain/model"
)

// TimestampLayout renders completion times like date(1).
const TimestampLayout = time.UnixDate

// FormatNotification turns a report into the fixed subject/body template.
func FormatNotification(report model.Report) model.Notification {
	subject := report.Task + " complete"
	switch {
	case report.Failed:
		subject = report.Task + " failed"
	case report.ExitCode != nil && *report.ExitCode == 0:
		subject = report.Task + " succeeded"
	case report.ExitCode != nil:
		subject = report.Task + " failed"
	}

	completed := report.CompletedAt.Format(TimestampLayout)

	var body strings.Builder
	body.WriteString(fmt.Sprintf("%s finished at %s.\n", report.Task, completed))
	body.WriteString(fmt.Sprintf("Elapsed time: %s.\n", report.Elapsed))
	if report.ExitCode != nil {
		body.WriteString(fmt.Sprintf("Exit status: %d\n", *report.ExitCode))
	}
	if report.Detail != "" {
		body.WriteString(report.Detail)
		body.WriteString("\n")
	}

	fields := []model.NotificationField{
		{Name: "Completed", Value: completed, Inline: false},
		{Name: "Elapsed", Value: report.Elapsed.String(), Inline: true},
	}
	if report.ExitCode != nil {
		fields = append(fields, model.NotificationField{
			Name:   "Exit status",
			Value:  strconv.Itoa(*report.ExitCode),
			Inline: true,
		})
	}

	return model.Notification{
		Subject: subject,
		Body:    body.String(),
		Success: report.Succeeded(),
		Fields:  fields,
	}
}
