package di

import (
	"fmt"
	"log/slog"
	"os"

	"waffle-cron/internal/adapter/boltstore"
	"waffle-cron/internal/adapter/discord"
	"waffle-cron/internal/adapter/execrunner"
	"waffle-cron/internal/adapter/influx"
	"waffle-cron/internal/adapter/logging"
	"waffle-cron/internal/adapter/mailer"
	"waffle-cron/internal/adapter/notify"
	"waffle-cron/internal/app"
	"waffle-cron/internal/config"
	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
	"waffle-cron/internal/usecase"
)

func provideLogger(cfg *config.Config) ports.Logger {
	// stdout carries task output and CLI results.
	if cfg.LogFormat == "console" {
		return logging.NewConsole(os.Stderr)
	}
	return logging.NewJSON(os.Stderr, slog.LevelInfo).With("work_dir", cfg.WorkDir)
}

func provideCommandRunner(cfg *config.Config, logger ports.Logger) *execrunner.Runner {
	return execrunner.New(cfg.WorkDir, cfg.VenvDir, logger)
}

func provideNotifier(cfg *config.Config, runner ports.CommandRunner, logger ports.Logger) (ports.Notifier, error) {
	mail, err := mailer.NewMailCommand(cfg.MailCommand, cfg.MailRecipients, runner, logger)
	if err != nil {
		return nil, fmt.Errorf("MAIL_COMMAND/MAIL_RECIPIENTS: %w", err)
	}
	if cfg.DiscordWebhookURL == "" {
		return mail, nil
	}
	webhook := discord.NewWebhook(cfg.DiscordWebhookURL, cfg.RequestTimeout, logger)
	return notify.NewCompositeNotifier(logger, mail, webhook), nil
}

func provideRunStore(cfg *config.Config) (ports.RunStore, func(), error) {
	store, err := boltstore.Open(cfg.LedgerPath, cfg.LockTimeout)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func provideLedgerReader(cfg *config.Config) (ports.RunStore, func(), error) {
	store, err := boltstore.OpenReadOnly(cfg.LedgerPath, cfg.LockTimeout)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func provideMetrics(cfg *config.Config) (ports.MetricsSink, func()) {
	if cfg.InfluxURL == "" {
		return influx.NoopMetrics{}, func() {}
	}
	metrics := influx.NewRunMetrics(influx.DBParams{
		URL:    cfg.InfluxURL,
		Org:    cfg.InfluxOrg,
		Token:  cfg.InfluxToken,
		Bucket: cfg.InfluxBucket,
	})
	return metrics, func() { _ = metrics.Close() }
}

func provideArchiveConfig(cfg *config.Config) (usecase.ArchiveConfig, error) {
	upload, err := model.ParseCommand(cfg.UploadCommand)
	if err != nil {
		return usecase.ArchiveConfig{}, fmt.Errorf("UPLOAD_COMMAND: %w", err)
	}
	return usecase.ArchiveConfig{
		WorkDir:          cfg.WorkDir,
		DataDir:          cfg.DataDir,
		Upload:           upload,
		KeepLocalArchive: cfg.KeepLocalArchive,
		PruneDataDir:     cfg.PruneDataDir,
		Timeout:          cfg.TaskTimeout,
	}, nil
}

func provideSettings(cfg *config.Config) (app.Settings, error) {
	scrape, err := model.ParseCommand(cfg.ScrapeCommand)
	if err != nil {
		return app.Settings{}, fmt.Errorf("SCRAPE_COMMAND: %w", err)
	}
	grids, err := model.ParseCommand(cfg.GridsCommand)
	if err != nil {
		return app.Settings{}, fmt.Errorf("GRIDS_COMMAND: %w", err)
	}

	return app.Settings{
		Tasks: []usecase.TaskSpec{
			{
				Name:             app.TaskScrape,
				Title:            "Data scrape",
				Command:          scrape,
				ReportExitStatus: true,
				Timeout:          cfg.TaskTimeout,
			},
			{
				Name:    app.TaskUpdateGrids,
				Title:   "Grid update",
				Command: grids,
				Timeout: cfg.TaskTimeout,
			},
		},
		Schedules: map[string]string{
			app.TaskScrape:      cfg.ScrapeCron,
			app.TaskUpdateGrids: cfg.GridsCron,
			app.TaskArchive:     cfg.ArchiveCron,
		},
		RunOnStart: cfg.RunOnStart,
	}, nil
}
