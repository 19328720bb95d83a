package executor

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/Cyclone1070/toolproxy/internal/config"
)

const (
	binarySampleSize = 8000
	// waitDelaySlack bounds how long Wait blocks on pipes held open by escaped grandchildren.
	waitDelaySlack = time.Second
)

// Result represents the outcome of a command execution.
type Result struct {
	Output    string // combined stdout and stderr
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// OSCommandExecutor runs shell command strings as subprocesses in their own process group.
type OSCommandExecutor struct {
	maxOutput int
	killGrace time.Duration
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{
		maxOutput: int(cfg.Tools.MaxCommandOutput),
		killGrace: time.Duration(cfg.Tools.KillGraceMs) * time.Millisecond,
	}
}

// RunShell executes command through the platform shell in dir with a wall-clock timeout.
//
// A non-zero exit status is reported through Result.ExitCode with a nil error.
// On timeout the whole process group is terminated and ErrTimeout is returned together with
// the output captured so far. Cancelling ctx kills the process group immediately and returns
// ctx.Err() with the partial result.
func (e *OSCommandExecutor) RunShell(ctx context.Context, command, dir string, env []string, timeout time.Duration) (*Result, error) {
	cmd := shellCommand(command)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	out := newCollector(e.maxOutput, binarySampleSize)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = e.killGrace + waitDelaySlack

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &StartError{Command: command, Dir: dir, Cause: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var execErr error
	select {
	case execErr = <-done:
		// Background children that keep the pipes open do not make the command fail.
		if errors.Is(execErr, exec.ErrWaitDelay) {
			execErr = nil
		}
	case <-ctx.Done():
		_ = killGroup(cmd)
		<-done
		execErr = ctx.Err()
	case <-timer.C:
		e.terminate(cmd, done)
		execErr = ErrTimeout
	}

	result := &Result{
		Output:    out.String(),
		ExitCode:  exitCode(execErr),
		Truncated: out.Truncated(),
		Duration:  time.Since(start),
	}

	var exitErr *exec.ExitError
	if errors.As(execErr, &exitErr) {
		return result, nil
	}
	return result, execErr
}

// terminate asks the process group to stop, then kills it after the grace period.
// The group is always killed at the end: members that ignore SIGTERM outlive the shell.
// ESRCH from the final kill means the group is already gone.
func (e *OSCommandExecutor) terminate(cmd *exec.Cmd, done <-chan error) {
	_ = terminateGroup(cmd)
	select {
	case <-done:
		_ = killGroup(cmd)
	case <-time.After(e.killGrace):
		_ = killGroup(cmd)
		<-done
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
