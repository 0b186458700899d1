// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package subproc

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunCapturesStdout(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	out, err := r.Run(context.Background(), []string{"sh", "-c", "echo hello"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("stdout = %q, want hello", out)
	}
	if got := len(r.Processes()); got != 0 {
		t.Errorf("registry holds %d processes after Run, want 0", got)
	}
}

func TestRunReportsExitCode(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	_, err := r.Run(context.Background(), []string{"sh", "-c", "exit 3"})
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *exec.ExitError", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.ExitCode())
	}
}

func TestRunHonorsContext(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Run(ctx, []string{"sh", "-c", "sleep 10"})
	if err == nil {
		t.Error("Run survived context cancellation")
	}
}

func TestLaunchTracksAndTidies(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	p, err := r.Launch([]string{"sh", "-c", "exit 0"})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(r.Processes()); got != 1 {
		t.Fatalf("registry holds %d processes, want 1", got)
	}

	code, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if p.Running() {
		t.Error("Running() = true after Wait")
	}

	// Finished children stay on the books until tidied.
	if got := len(r.Processes()); got != 1 {
		t.Errorf("registry holds %d processes before Tidy, want 1", got)
	}
	if removed := r.Tidy(); removed != 1 {
		t.Errorf("Tidy removed %d, want 1", removed)
	}
	if got := len(r.Processes()); got != 0 {
		t.Errorf("registry holds %d processes after Tidy, want 0", got)
	}
}

func TestGrep(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	p, err := r.Launch([]string{"sh", "-c", "sleep 5"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Purge(ctx)
	}()

	matched, err := r.Grep(`sleep \d`)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].PID() != p.PID() {
		t.Errorf("Grep = %v, want the sleeping child", matched)
	}

	none, err := r.Grep("no-such-command")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("Grep matched %d, want 0", len(none))
	}

	if _, err := r.Grep("("); err == nil {
		t.Error("Grep accepted a malformed pattern")
	}
}

func TestPurgeTerminatesRunningChildren(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	p, err := r.Launch([]string{"sh", "-c", "sleep 30"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.Purge(ctx)

	select {
	case <-p.Done():
	default:
		t.Error("child still running after Purge")
	}
	if got := len(r.Processes()); got != 0 {
		t.Errorf("registry holds %d processes after Purge, want 0", got)
	}
}

func TestWriteTable(t *testing.T) {
	requireShell(t)
	r := NewRegistry()
	p, err := r.Launch([]string{"sh", "-c", "exit 7"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := r.WriteTable(&out); err != nil {
		t.Fatal(err)
	}
	table := out.String()
	if !strings.Contains(table, "PID") || !strings.Contains(table, "COMMAND") {
		t.Errorf("table missing header:\n%s", table)
	}
	if !strings.Contains(table, "exit 7") {
		t.Errorf("table missing exit state:\n%s", table)
	}
}

func TestLaunchEmptyArgv(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Launch(nil); err == nil {
		t.Error("Launch(nil) did not fail")
	}
	if _, err := r.Run(context.Background(), nil); err == nil {
		t.Error("Run(nil) did not fail")
	}
}
