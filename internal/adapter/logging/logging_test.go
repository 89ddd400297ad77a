package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSLoggerWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Error(context.Background(), "task failed", "task", "scrape", "exit_code", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "ERROR", record["level"])
	require.Equal(t, "task failed", record["msg"])
	require.Equal(t, "scrape", record["task"])
	require.Equal(t, float64(2), record["exit_code"])
}

func TestSLoggerNilIsSafe(t *testing.T) {
	New(nil).Info(context.Background(), "ignored")
	New(nil).With("task", "scrape").Error(context.Background(), "ignored")
}

func TestNewJSONWithAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSON(&buf, slog.LevelInfo)
	logger := base.With("work_dir", "/srv/waffle")

	logger.Info(context.Background(), "starting task", "task", "archive")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "INFO", record["level"])
	require.Equal(t, "/srv/waffle", record["work_dir"])
	require.Equal(t, "archive", record["task"])

	buf.Reset()
	base.Info(context.Background(), "unchanged")
	require.NotContains(t, buf.String(), "work_dir")
}

func TestZeroLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZero(zerolog.New(&buf))

	logger.Info(context.Background(), "archive written", "path", "2026-10-17_archived_data.tar.gz")
	logger.Error(context.Background(), "upload failed", "error", errors.New("exit status 1"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.Equal(t, "info", first["level"])
	require.Equal(t, "2026-10-17_archived_data.tar.gz", first["path"])
	require.Equal(t, "error", second["level"])
	require.Equal(t, "exit status 1", second["error"])
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Info(context.Background(), "starting command", "command", "python scrape_data.py")

	require.Contains(t, buf.String(), "starting command")
	require.Contains(t, buf.String(), "command=")
}
