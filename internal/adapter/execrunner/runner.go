package execrunner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

// Runner executes commands as child processes of the current one.
type Runner struct {
	workDir string
	venvDir string
	logger  ports.Logger
}

var _ ports.CommandRunner = (*Runner)(nil)

// New creates a Runner. Commands without a Dir run in workDir. When venvDir is
// set its bin directory is put first on PATH and VIRTUAL_ENV is exported.
func New(workDir, venvDir string, logger ports.Logger) *Runner {
	return &Runner{
		workDir: workDir,
		venvDir: venvDir,
		logger:  logger,
	}
}

// Run starts the command and blocks until it exits or ctx is cancelled.
// Cancellation kills the whole process group.
func (r *Runner) Run(ctx context.Context, command model.Command) (int, error) {
	if command.Name == "" {
		return -1, fmt.Errorf("command name is empty")
	}

	cmd := exec.Command(command.Name, command.Args...)
	cmd.Dir = command.Dir
	if cmd.Dir == "" {
		cmd.Dir = r.workDir
	}
	cmd.Env = r.environ(command.Env)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if command.Stdin != "" {
		cmd.Stdin = strings.NewReader(command.Stdin)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if r.logger != nil {
		r.logger.Info(ctx, "starting command", "command", command.String(), "dir", cmd.Dir)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", command.Name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		<-done
		return -1, fmt.Errorf("command %s cancelled: %w", command.Name, ctx.Err())
	case err = <-done:
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait %s: %w", command.Name, err)
	}
	return 0, nil
}

func (r *Runner) environ(extra []string) []string {
	env := os.Environ()
	if r.venvDir != "" {
		bin := filepath.Join(r.venvDir, "bin")
		env = setEnv(env, "VIRTUAL_ENV", r.venvDir)
		env = setEnv(env, "PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	for _, kv := range extra {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env = setEnv(env, key, value)
		}
	}
	return env
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+value)
}
