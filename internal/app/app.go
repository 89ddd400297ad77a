package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
	"waffle-cron/internal/usecase"
)

// Task names accepted by RunTask.
const (
	TaskScrape      = "scrape"
	TaskUpdateGrids = "update-grids"
	TaskArchive     = "archive"
)

var (
	// ErrUnknownTask is returned for a task name that is not configured.
	ErrUnknownTask = errors.New("unknown task")
	// ErrBusy is returned when another task is already running in this process.
	ErrBusy = errors.New("another task is running")
)

// Settings selects which tasks exist and when they are scheduled.
type Settings struct {
	Tasks []usecase.TaskSpec
	// Schedules maps task names to cron expressions; an empty expression disables the job.
	Schedules  map[string]string
	RunOnStart bool
}

// App dispatches tasks and manages the lifecycle of the scheduler.
type App struct {
	cron     *cron.Cron
	timed    *usecase.TimedTask
	archive  *usecase.ArchiveUpload
	logger   ports.Logger
	specs    map[string]usecase.TaskSpec
	settings Settings

	// running serializes tasks so no two of them touch the data directory at once.
	running sync.Mutex
}

// New constructs an App instance.
func New(
	timed *usecase.TimedTask,
	archive *usecase.ArchiveUpload,
	logger ports.Logger,
	settings Settings,
) *App {
	specs := make(map[string]usecase.TaskSpec, len(settings.Tasks))
	for _, spec := range settings.Tasks {
		specs[spec.Name] = spec
	}
	return &App{
		cron:     cron.New(),
		timed:    timed,
		archive:  archive,
		logger:   logger,
		specs:    specs,
		settings: settings,
	}
}

// RunTask runs the named task once, synchronously.
func (a *App) RunTask(ctx context.Context, name string) (model.RunRecord, error) {
	if name != TaskArchive {
		if _, ok := a.specs[name]; !ok {
			return model.RunRecord{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
		}
	}

	if !a.running.TryLock() {
		return model.RunRecord{}, fmt.Errorf("%s: %w", name, ErrBusy)
	}
	defer a.running.Unlock()

	if name == TaskArchive {
		return a.archive.Run(ctx)
	}
	return a.timed.Run(ctx, a.specs[name])
}

// Run registers the configured jobs and runs the scheduler until ctx is done.
func (a *App) Run(ctx context.Context) error {
	jobs, err := a.scheduleJobs(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	if a.settings.RunOnStart {
		for _, name := range jobs {
			a.logger.Info(ctx, "running job immediately", "task", name)
			a.runJob(ctx, name)
		}
	}

	a.logger.Info(ctx, "starting scheduler", "jobs", len(jobs))
	a.cron.Start()

	<-ctx.Done()
	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	a.logger.Info(context.Background(), "scheduler stopped")
	return nil
}

func (a *App) scheduleJobs(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(a.settings.Schedules))
	for name := range a.settings.Schedules {
		names = append(names, name)
	}
	sort.Strings(names)

	var scheduled []string
	for _, name := range names {
		schedule := a.settings.Schedules[name]
		if schedule == "" {
			continue
		}
		if name != TaskArchive {
			if _, ok := a.specs[name]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
			}
		}

		job := name
		if _, err := a.cron.AddFunc(schedule, func() { a.runJob(ctx, job) }); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", name, schedule, err)
		}
		a.logger.Info(ctx, "job scheduled", "task", name, "cron", schedule)
		scheduled = append(scheduled, name)
	}
	return scheduled, nil
}

func (a *App) runJob(ctx context.Context, name string) {
	if _, err := a.RunTask(ctx, name); err != nil {
		if errors.Is(err, ErrBusy) {
			a.logger.Info(ctx, "skipping job, another task is running", "task", name)
			return
		}
		a.logger.Error(ctx, "scheduled job failed", "task", name, "error", err)
	}
}
