package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waffle-cron/internal/domain/model"
)

type archiveFixture struct {
	work     string
	data     string
	archive  string
	previous string
	runner   *testRunner
	notifier *testNotifier
	store    *testStore
	archiver *testArchiver
}

func newArchiveFixture(t *testing.T) *archiveFixture {
	t.Helper()

	work := t.TempDir()
	data := filepath.Join(work, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "mcdonalds"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "mcdonalds", "raw.json"), []byte("{}"), 0o644))

	previous := filepath.Join(work, "2026-09-17_archived_data.tar.gz")
	require.NoError(t, os.WriteFile(previous, []byte("old"), 0o644))

	return &archiveFixture{
		work:     work,
		data:     data,
		archive:  filepath.Join(work, "2026-10-17_archived_data.tar.gz"),
		previous: previous,
		runner:   &testRunner{},
		notifier: &testNotifier{},
		store:    &testStore{},
		archiver: &testArchiver{},
	}
}

func (f *archiveFixture) useCase(cfg ArchiveConfig) *ArchiveUpload {
	cfg.WorkDir = f.work
	cfg.DataDir = "data"
	cfg.Upload = model.Command{Name: "python", Args: []string{"google_drive/upload_file.py"}}

	clock := newTestClock(testStart, testStart.Add(125*time.Second))
	return NewArchiveUpload(f.archiver, f.runner, f.notifier, f.store, nil, clock, testLogger{}, cfg)
}

func TestArchiveName(t *testing.T) {
	require.Equal(t, "2026-10-17_archived_data.tar.gz", ArchiveName(testStart))
	require.Equal(t, "2027-01-05_archived_data.tar.gz", ArchiveName(time.Date(2027, 1, 5, 23, 59, 0, 0, time.UTC)))
}

func TestArchiveUploadSuccessCleansUp(t *testing.T) {
	f := newArchiveFixture(t)

	run, err := f.useCase(ArchiveConfig{PruneDataDir: true}).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, [][2]string{{f.data, f.archive}}, f.archiver.calls)
	require.Len(t, f.runner.commands, 1)
	require.Equal(t, []string{"google_drive/upload_file.py", f.archive}, f.runner.commands[0].Args)

	require.NoFileExists(t, f.archive)
	require.NoDirExists(t, f.data)
	require.NoFileExists(t, f.previous)

	require.Equal(t, model.OutcomeSucceeded, run.Outcome)
	require.Equal(t, 0, run.ExitCode)
	require.Equal(t, "Archive upload succeeded", f.notifier.sent[0].Subject)
	require.Contains(t, f.notifier.sent[0].Body, "2 minutes, 5 seconds")
	require.Contains(t, f.notifier.sent[0].Body, "Uploaded 2026-10-17_archived_data.tar.gz.")
	require.Len(t, f.store.runs, 1)
}

func TestArchiveUploadKeepsFilesByPolicy(t *testing.T) {
	f := newArchiveFixture(t)

	_, err := f.useCase(ArchiveConfig{KeepLocalArchive: true, PruneDataDir: false}).Run(context.Background())
	require.NoError(t, err)

	require.FileExists(t, f.archive)
	require.DirExists(t, f.data)
	require.NoFileExists(t, f.previous)
}

func TestArchiveUploadFailureLeavesFiles(t *testing.T) {
	f := newArchiveFixture(t)
	f.runner.code = 1

	run, err := f.useCase(ArchiveConfig{PruneDataDir: true}).Run(context.Background())
	require.ErrorIs(t, err, ErrTaskFailed)

	require.FileExists(t, f.archive)
	require.DirExists(t, f.data)
	require.FileExists(t, filepath.Join(f.data, "mcdonalds", "raw.json"))
	require.FileExists(t, f.previous)

	require.Equal(t, model.OutcomeFailed, run.Outcome)
	require.Equal(t, 1, run.ExitCode)
	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, "Archive upload failed", f.notifier.sent[0].Subject)
	require.False(t, f.notifier.sent[0].Success)
	require.Contains(t, f.notifier.sent[0].Body, "Exit status: 1")
}

func TestArchiveUploadHelperStartFailure(t *testing.T) {
	f := newArchiveFixture(t)
	f.runner.code, f.runner.err = -1, errors.New("no such file")

	run, err := f.useCase(ArchiveConfig{PruneDataDir: true}).Run(context.Background())
	require.ErrorIs(t, err, ErrTaskFailed)
	require.Equal(t, -1, run.ExitCode)
	require.FileExists(t, f.archive)
	require.DirExists(t, f.data)
	require.Equal(t, "Archive upload failed", f.notifier.sent[0].Subject)
}

func TestArchiveUploadArchiveFailureSkipsUpload(t *testing.T) {
	f := newArchiveFixture(t)
	f.archiver.err = errors.New("disk full")

	_, err := f.useCase(ArchiveConfig{PruneDataDir: true}).Run(context.Background())
	require.ErrorIs(t, err, ErrTaskFailed)
	require.Empty(t, f.runner.commands)
	require.DirExists(t, f.data)
	require.Contains(t, f.notifier.sent[0].Body, "disk full")
}

func TestArchiveUploadRefusesDataDirContainingWorkDir(t *testing.T) {
	for _, dataDir := range []string{".", "..", "", "data/.."} {
		t.Run("data_dir="+dataDir, func(t *testing.T) {
			work := filepath.Join(t.TempDir(), "work")
			require.NoError(t, os.MkdirAll(work, 0o755))
			ledger := filepath.Join(work, "waffle-cron.db")
			require.NoError(t, os.WriteFile(ledger, []byte("ledger"), 0o600))

			runner := &testRunner{}
			notifier := &testNotifier{}
			archiver := &testArchiver{}
			clock := newTestClock(testStart, testStart.Add(time.Second))
			task := NewArchiveUpload(archiver, runner, notifier, &testStore{}, nil, clock, testLogger{}, ArchiveConfig{
				WorkDir:      work,
				DataDir:      dataDir,
				Upload:       model.Command{Name: "python", Args: []string{"google_drive/upload_file.py"}},
				PruneDataDir: true,
			})

			run, err := task.Run(context.Background())
			require.ErrorIs(t, err, ErrTaskFailed)
			require.Equal(t, model.OutcomeFailed, run.Outcome)
			require.Empty(t, archiver.calls)
			require.Empty(t, runner.commands)
			require.FileExists(t, ledger)
			require.Equal(t, "Archive upload failed", notifier.sent[0].Subject)
			require.Contains(t, notifier.sent[0].Body, "Refusing to archive")
		})
	}
}

func TestCheckDataDir(t *testing.T) {
	work := filepath.Join(t.TempDir(), "work")

	require.NoError(t, checkDataDir(work, filepath.Join(work, "data")))
	require.NoError(t, checkDataDir(work, filepath.Join(work, "..data")))
	require.NoError(t, checkDataDir(work, filepath.Join(filepath.Dir(work), "elsewhere")))

	require.ErrorIs(t, checkDataDir(work, work), ErrUnsafeDataDir)
	require.ErrorIs(t, checkDataDir(work, filepath.Dir(work)), ErrUnsafeDataDir)
	require.ErrorIs(t, checkDataDir(filepath.Join(work, "sub"), work), ErrUnsafeDataDir)
}
