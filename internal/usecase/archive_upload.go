package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

const (
	// ArchiveSuffix follows the date in every archive file name.
	ArchiveSuffix = "_archived_data.tar.gz"

	archiveTaskName  = "archive"
	archiveTaskTitle = "Archive upload"
)

// ArchiveName returns the archive file name for the given day.
func ArchiveName(day time.Time) string {
	return day.Format("2006-01-02") + ArchiveSuffix
}

// ArchiveConfig controls the archive-and-upload task.
type ArchiveConfig struct {
	WorkDir string
	// DataDir is resolved against WorkDir when relative.
	DataDir string
	// Upload is invoked with the archive path appended as its last argument.
	Upload           model.Command
	KeepLocalArchive bool
	PruneDataDir     bool
	Timeout          time.Duration
}

// ErrUnsafeDataDir is returned when pruning the data directory would remove the work directory.
var ErrUnsafeDataDir = errors.New("data directory must be inside the work directory")

// ArchiveUpload compresses the data directory, hands the archive to the upload
// helper and cleans up local files only after a confirmed upload.
type ArchiveUpload struct {
	archiver ports.Archiver
	commands ports.CommandRunner
	clock    ports.Clock
	logger   ports.Logger
	reporter reporter
	cfg      ArchiveConfig
}

// NewArchiveUpload constructs an ArchiveUpload use case. store and metrics may be nil.
func NewArchiveUpload(
	archiver ports.Archiver,
	commands ports.CommandRunner,
	notifier ports.Notifier,
	store ports.RunStore,
	metrics ports.MetricsSink,
	clock ports.Clock,
	logger ports.Logger,
	cfg ArchiveConfig,
) *ArchiveUpload {
	return &ArchiveUpload{
		archiver: archiver,
		commands: commands,
		clock:    clock,
		logger:   logger,
		reporter: reporter{
			notifier: notifier,
			store:    store,
			metrics:  metrics,
			logger:   logger,
		},
		cfg: cfg,
	}
}

// Run executes archive, upload and cleanup. On any failure every file is left in place.
func (a *ArchiveUpload) Run(ctx context.Context) (model.RunRecord, error) {
	runCtx, cancel := withTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := a.clock.Now()
	name := ArchiveName(start)
	archivePath := filepath.Join(a.cfg.WorkDir, name)
	dataDir := a.dataDir()
	upload := a.cfg.Upload.WithArgs(archivePath)

	a.logger.Info(ctx, "starting task", "task", archiveTaskName, "data_dir", dataDir, "archive", archivePath)

	run := model.RunRecord{
		ID:        newRunID(),
		Task:      archiveTaskName,
		Command:   upload.String(),
		StartedAt: start,
		ExitCode:  -1,
	}

	if err := checkDataDir(a.cfg.WorkDir, dataDir); err != nil {
		a.logger.Error(ctx, "refusing to archive", "data_dir", dataDir, "error", err)
		return a.fail(ctx, run, nil, fmt.Sprintf("Refusing to archive %s: %v. Local files were left in place.", dataDir, err))
	}

	if err := a.archiver.Archive(runCtx, dataDir, archivePath); err != nil {
		a.logger.Error(ctx, "archiving failed", "error", err)
		return a.fail(ctx, run, nil, fmt.Sprintf("Archiving %s failed: %v. Local files were left in place.", dataDir, err))
	}

	code, err := a.commands.Run(runCtx, upload)
	if err != nil {
		a.logger.Error(ctx, "upload helper could not be run", "error", err)
		return a.fail(ctx, run, nil, fmt.Sprintf("Could not run upload helper: %v. %s and %s were left in place.", err, name, dataDir))
	}
	run.ExitCode = code

	if code != 0 {
		a.logger.Error(ctx, "upload failed", "exit_code", code)
		return a.fail(ctx, run, &code, fmt.Sprintf("Upload of %s failed. %s and %s were left in place.", name, name, dataDir))
	}

	run.FinishedAt = a.clock.Now()
	run.Outcome = model.OutcomeSucceeded
	run.Detail = a.cleanup(ctx, start, archivePath, dataDir)

	return a.reporter.finish(ctx, run, model.Report{
		Task:        archiveTaskTitle,
		CompletedAt: run.FinishedAt,
		Elapsed:     run.Elapsed(),
		ExitCode:    &code,
		Detail:      run.Detail,
	})
}

func (a *ArchiveUpload) fail(ctx context.Context, run model.RunRecord, exitCode *int, detail string) (model.RunRecord, error) {
	run.FinishedAt = a.clock.Now()
	run.Outcome = model.OutcomeFailed
	run.Detail = detail

	return a.reporter.finish(ctx, run, model.Report{
		Task:        archiveTaskTitle,
		CompletedAt: run.FinishedAt,
		Elapsed:     run.Elapsed(),
		ExitCode:    exitCode,
		Failed:      true,
		Detail:      detail,
	})
}

// cleanup runs only after a confirmed upload. Removal errors are reported in
// the detail line and do not change the outcome.
func (a *ArchiveUpload) cleanup(ctx context.Context, day time.Time, archivePath, dataDir string) string {
	var removed, problems []string

	remove := func(path string, all bool) {
		var err error
		if all {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		switch {
		case err == nil:
			removed = append(removed, filepath.Base(path))
		case errors.Is(err, fs.ErrNotExist):
		default:
			a.logger.Error(ctx, "cleanup failed", "path", path, "error", err)
			problems = append(problems, fmt.Sprintf("could not remove %s: %v", filepath.Base(path), err))
		}
	}

	if !a.cfg.KeepLocalArchive {
		remove(archivePath, false)
	}
	if a.cfg.PruneDataDir {
		remove(dataDir, true)
	}
	if previous := filepath.Join(a.cfg.WorkDir, ArchiveName(day.AddDate(0, -1, 0))); previous != archivePath {
		remove(previous, false)
	}

	detail := fmt.Sprintf("Uploaded %s.", filepath.Base(archivePath))
	if len(removed) > 0 {
		detail += " Removed " + strings.Join(removed, ", ") + "."
	}
	if len(problems) > 0 {
		detail += " Cleanup: " + strings.Join(problems, "; ") + "."
	}
	return detail
}

func (a *ArchiveUpload) dataDir() string {
	if filepath.IsAbs(a.cfg.DataDir) {
		return a.cfg.DataDir
	}
	return filepath.Join(a.cfg.WorkDir, a.cfg.DataDir)
}

// checkDataDir rejects a data directory that is the work directory or one of
// its parents. Archives are staged in the work directory and pruning removes
// the data directory recursively.
func checkDataDir(workDir, dataDir string) error {
	work, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolve work directory: %w", err)
	}
	data, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}

	rel, err := filepath.Rel(data, work)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return fmt.Errorf("%w: %s contains %s", ErrUnsafeDataDir, data, work)
	}
	return nil
}
