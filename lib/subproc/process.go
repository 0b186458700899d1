// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package subproc

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// Process is one child launched through a Registry. All accessors are
// safe for concurrent use; exit state becomes valid once Done is
// closed.
type Process struct {
	cmd     *exec.Cmd
	argv    []string
	started time.Time

	done     chan struct{}
	exitCode int
	waitErr  error
}

// PID returns the child's process ID.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Argv returns the command line the child was launched with.
func (p *Process) Argv() []string {
	return append([]string(nil), p.argv...)
}

// Started returns the launch time.
func (p *Process) Started() time.Time {
	return p.started
}

// Done is closed when the child has exited and its exit state is
// recorded.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Running reports whether the child has not yet exited.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// ExitCode returns the child's exit code. The second return is false
// while the child is still running.
func (p *Process) ExitCode() (int, bool) {
	select {
	case <-p.done:
		return p.exitCode, true
	default:
		return 0, false
	}
}

// Wait blocks until the child exits or ctx is done. On exit it returns
// the exit code and any wait error other than a nonzero exit status.
func (p *Process) Wait(ctx context.Context) (int, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		return p.exitCode, p.waitErr
	}
	return p.exitCode, nil
}

// Terminate asks the child to exit: SIGTERM where supported, falling
// back to a hard kill. Terminating an already-exited child is not an
// error.
func (p *Process) Terminate() error {
	if !p.Running() {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return p.cmd.Process.Kill()
	}
	return nil
}

// reap runs in a goroutine per child, recording the exit state.
func (p *Process) reap() {
	err := p.cmd.Wait()
	p.exitCode = p.cmd.ProcessState.ExitCode()
	p.waitErr = err
	close(p.done)
}
