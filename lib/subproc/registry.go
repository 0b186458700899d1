// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package subproc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// Registry launches children and keeps them on the books until Tidy or
// Purge removes them.
type Registry struct {
	mu     sync.Mutex
	procs  map[int]*Process
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[int]*Process)}
}

// SetLogger enables logging of launches, exits, and purges.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

func (r *Registry) log(msg string, args ...any) {
	r.mu.Lock()
	logger := r.logger
	r.mu.Unlock()
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Launch starts argv as a detached-but-tracked child inheriting the
// parent's standard streams, and returns without waiting. The child
// stays registered after it exits so its exit code can be inspected;
// Tidy removes finished entries.
func (r *Registry) Launch(argv []string) (*Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("launch: empty command line")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launching %s: %w", argv[0], err)
	}
	p := &Process{
		cmd:     cmd,
		argv:    append([]string(nil), argv...),
		started: time.Now(),
		done:    make(chan struct{}),
	}
	r.mu.Lock()
	r.procs[p.PID()] = p
	r.mu.Unlock()
	r.log("launched", "pid", p.PID(), "command", argv[0])
	go p.reap()
	return p, nil
}

// Run executes argv synchronously with stdout captured and stderr
// passed through, honoring ctx cancellation. The child is registered
// for the duration of the call so concurrent observers see it. On a
// nonzero exit the captured stdout is still returned alongside the
// *exec.ExitError.
func (r *Registry) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("run: empty command line")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout bytes.Buffer
	cmd.Stdin = os.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("launching %s: %w", argv[0], err)
	}
	p := &Process{
		cmd:     cmd,
		argv:    append([]string(nil), argv...),
		started: time.Now(),
		done:    make(chan struct{}),
	}
	r.mu.Lock()
	r.procs[p.PID()] = p
	r.mu.Unlock()
	r.log("running", "pid", p.PID(), "command", argv[0])
	p.reap()
	r.mu.Lock()
	delete(r.procs, p.PID())
	r.mu.Unlock()
	return stdout.String(), p.waitErr
}

// Processes returns the registered children, running and finished, in
// PID order.
func (r *Registry) Processes() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	procs := make([]*Process, 0, len(r.procs))
	for _, p := range r.procs {
		procs = append(procs, p)
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID() < procs[j].PID() })
	return procs
}

// Grep returns registered children whose command line matches the
// regular expression.
func (r *Registry) Grep(pattern string) ([]*Process, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("grep: %w", err)
	}
	var matched []*Process
	for _, p := range r.Processes() {
		if re.MatchString(strings.Join(p.argv, " ")) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Tidy drops finished children from the registry and returns how many
// were removed.
func (r *Registry) Tidy() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for pid, p := range r.procs {
		if !p.Running() {
			delete(r.procs, pid)
			removed++
		}
	}
	return removed
}

// Purge terminates every running child, waits for each to exit or for
// ctx to be done, and empties the registry. Intended for deferred
// shutdown in main.
func (r *Registry) Purge(ctx context.Context) {
	for _, p := range r.Processes() {
		if !p.Running() {
			continue
		}
		r.log("terminating", "pid", p.PID(), "command", p.argv[0])
		if err := p.Terminate(); err != nil {
			continue
		}
		select {
		case <-p.Done():
		case <-ctx.Done():
		}
	}
	r.mu.Lock()
	r.procs = make(map[int]*Process)
	r.mu.Unlock()
}

// WriteTable renders the registry as an aligned text table.
func (r *Registry) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tSTATE\tSTARTED\tCOMMAND")
	for _, p := range r.Processes() {
		state := "running"
		if code, done := p.ExitCode(); done {
			state = fmt.Sprintf("exit %d", code)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			p.PID(), state, p.Started().Format(time.TimeOnly), strings.Join(p.Argv(), " "))
	}
	return tw.Flush()
}

// defaultRegistry backs the package-level convenience functions. Most
// programs want exactly one registry purged at exit.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Launch starts argv on the process-wide registry.
func Launch(argv []string) (*Process, error) {
	return defaultRegistry.Launch(argv)
}

// Run executes argv synchronously on the process-wide registry.
func Run(ctx context.Context, argv []string) (string, error) {
	return defaultRegistry.Run(ctx, argv)
}

// Purge shuts down the process-wide registry's children.
func Purge(ctx context.Context) {
	defaultRegistry.Purge(ctx)
}
