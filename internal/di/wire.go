//go:build wireinject

package di

import (
	"github.com/google/wire"

	"waffle-cron/internal/adapter/archive"
	"waffle-cron/internal/adapter/clock"
	"waffle-cron/internal/adapter/execrunner"
	"waffle-cron/internal/app"
	"waffle-cron/internal/config"
	"waffle-cron/internal/domain/ports"
	"waffle-cron/internal/usecase"
)

// InitializeApp wires the application components together.
// The returned cleanup closes the run ledger (releasing its lock) and the metrics client.
func InitializeApp() (*app.App, func(), error) {
	wire.Build(
		config.Load,
		provideLogger,
		provideCommandRunner,
		wire.Bind(new(ports.CommandRunner), new(*execrunner.Runner)),
		archive.NewTarGz,
		wire.Bind(new(ports.Archiver), new(*archive.TarGz)),
		wire.Struct(new(clock.Local)),
		wire.Bind(new(ports.Clock), new(clock.Local)),
		provideNotifier,
		provideRunStore,
		provideMetrics,
		usecase.NewTimedTask,
		provideArchiveConfig,
		usecase.NewArchiveUpload,
		provideSettings,
		app.New,
	)
	return nil, nil, nil
}

// InitializeLedger opens the run ledger read-only for reporting.
func InitializeLedger() (ports.RunStore, func(), error) {
	wire.Build(
		config.Load,
		provideLedgerReader,
	)
	return nil, nil, nil
}
