package boltstore

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waffle-cron/internal/domain/model"
)

func TestStoreRecordRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open(path, time.Second)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)
	for i, task := range []string{"scrape", "update-grids", "archive"} {
		require.NoError(t, store.Record(ctx, model.RunRecord{
			ID:         task,
			Task:       task,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + 125*time.Second),
			Outcome:    model.OutcomeSucceeded,
		}))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "archive", runs[0].Task)
	require.Equal(t, "update-grids", runs[1].Task)
	require.Equal(t, "2 minutes, 5 seconds", runs[0].Elapsed().String())

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestStoreOrdersAcrossTimeZones(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"), time.Second)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	east := time.FixedZone("EST", -5*3600)
	early := time.Date(2026, 10, 17, 1, 0, 0, 0, east) // 06:00 UTC
	late := time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, model.RunRecord{ID: "late", StartedAt: late}))
	require.NoError(t, store.Record(ctx, model.RunRecord{ID: "early", StartedAt: early}))

	runs, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "late", runs[0].ID)
	require.Equal(t, "early", runs[1].ID)
}

func TestStoreLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	first, err := Open(path, time.Second)
	require.NoError(t, err)

	_, err = Open(path, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Close())

	second, err := Open(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestStoreOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	_, err := OpenReadOnly(path, 100*time.Millisecond)
	require.ErrorIs(t, err, fs.ErrNotExist)

	writer, err := Open(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, writer.Record(context.Background(), model.RunRecord{
		ID:        "run-1",
		Task:      "scrape",
		StartedAt: time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC),
		Outcome:   model.OutcomeSucceeded,
	}))

	_, err = OpenReadOnly(path, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrLocked)
	require.NoError(t, writer.Close())

	first, err := OpenReadOnly(path, time.Second)
	require.NoError(t, err)
	defer first.Close()
	second, err := OpenReadOnly(path, time.Second)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].ID)

	_, err = Open(path, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrLocked)
}
