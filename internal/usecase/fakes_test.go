package usecase

import (
	"context"
	"os"
	"sync"
	"time"

	"waffle-cron/internal/domain/model"
)

type testLogger struct{}

func (testLogger) Info(context.Context, string, ...any) {}
func (testLogger) Error(context.Context, string, ...any) {}

type testClock struct {
	mu    sync.Mutex
	times []time.Time
	next  int
}

func newTestClock(times ...time.Time) *testClock {
	return &testClock{times: times}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.times[c.next]
	if c.next < len(c.times)-1 {
		c.next++
	}
	return t
}

type testRunner struct {
	commands []model.Command
	code     int
	err      error
}

func (r *testRunner) Run(_ context.Context, cmd model.Command) (int, error) {
	r.commands = append(r.commands, cmd)
	return r.code, r.err
}

type testNotifier struct {
	sent []model.Notification
	err  error
}

func (n *testNotifier) Send(_ context.Context, notification model.Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

type testStore struct {
	runs []model.RunRecord
}

func (s *testStore) Record(_ context.Context, run model.RunRecord) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *testStore) Recent(_ context.Context, _ int) ([]model.RunRecord, error) {
	return s.runs, nil
}

type testMetrics struct {
	observed []model.RunRecord
}

func (m *testMetrics) Observe(_ context.Context, run model.RunRecord) error {
	m.observed = append(m.observed, run)
	return nil
}

// testArchiver writes a placeholder archive so cleanup can be observed on disk.
type testArchiver struct {
	calls [][2]string
	err   error
}

func (a *testArchiver) Archive(_ context.Context, srcDir, dstPath string) error {
	a.calls = append(a.calls, [2]string{srcDir, dstPath})
	if a.err != nil {
		return a.err
	}
	return os.WriteFile(dstPath, []byte("archive"), 0o600)
}
