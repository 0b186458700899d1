// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/movomo/semper/lib/subproc"
)

// Subcommand tokens of the 7-Zip command line.
const (
	opAdd        = "a"
	opList       = "l"
	opExtract    = "e"
	opExtractAll = "x"
	opTest       = "t"
)

// allowedSwitches lists, per subcommand, the switch keys 7-Zip accepts
// there. Options outside the set are silently withheld from the
// rendered command line, so one container can drive every operation.
// The "m" entry stands for the whole -m<param> family and the method
// chain (see Options.Args).
var allowedSwitches = map[string]StringSet{
	opAdd: NewStringSet("i", "m", "p", "r", "sdel", "sfx", "si", "sni",
		"sns", "so", "spf", "ssw", "stl", "t", "u", "v", "w", "x"),
	opList: NewStringSet("ai", "an", "ax", "i", "slt", "sns", "p", "r", "x"),
	opExtract: NewStringSet("ai", "an", "ao", "ax", "i", "m", "o", "p",
		"r", "si", "sni", "sns", "so", "spf", "t", "x", "y"),
	opExtractAll: NewStringSet("ai", "an", "ao", "ax", "i", "m", "o", "p",
		"r", "si", "sni", "sns", "so", "spf", "t", "x", "y"),
	opTest: NewStringSet("ai", "an", "ax", "i", "p", "r", "sns", "x"),
}

// Handle is a launched child whose lifetime outlives the call, e.g. a
// GUI file manager window.
type Handle interface {
	PID() int
	Done() <-chan struct{}
	ExitCode() (int, bool)
	Wait(ctx context.Context) (int, error)
}

// Launcher runs the 7-Zip executable. The default implementation wraps
// a [subproc.Registry]; tests substitute a fake to capture command
// lines.
type Launcher interface {
	// Launch starts argv without waiting.
	Launch(argv []string) (Handle, error)

	// Run executes argv to completion with stdout captured. A nonzero
	// exit returns the captured output alongside an *exec.ExitError.
	Run(ctx context.Context, argv []string) (string, error)
}

// NewLauncher wraps a process registry as a Launcher. A nil registry
// uses the process-wide one.
func NewLauncher(registry *subproc.Registry) Launcher {
	if registry == nil {
		registry = subproc.Default()
	}
	return registryLauncher{registry}
}

type registryLauncher struct {
	registry *subproc.Registry
}

func (l registryLauncher) Launch(argv []string) (Handle, error) {
	p, err := l.registry.Launch(argv)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (l registryLauncher) Run(ctx context.Context, argv []string) (string, error) {
	return l.registry.Run(ctx, argv)
}

// Layer is one step of option composition: either a named preset
// resolved from the catalog or an inline overlay container. Layers
// merge in order, later layers winning scalar ties and accumulating
// container-kind values.
type Layer struct {
	preset  string
	overlay *Options
}

// Preset names a catalog entry as a composition layer.
func Preset(name string) Layer {
	return Layer{preset: name}
}

// Overlay wraps an inline container as a composition layer.
func Overlay(opts *Options) Layer {
	return Layer{overlay: opts}
}

// Config configures a Sevenzip facade. The zero value works: the
// executable is located automatically and options default to the
// "store" preset.
type Config struct {
	// Archive binds a default archive path; operations called with an
	// empty archive use it.
	Archive string

	// Layers compose the option container, in order. Empty means
	// [Preset("store")].
	Layers []Layer

	// ExtraArgs are appended verbatim to every command line, after the
	// serialized switches.
	ExtraArgs []string

	// GUI prefers the windowed executable (7zG) where installed.
	GUI bool

	// Executable overrides automatic location of the 7-Zip binary.
	Executable string

	// Catalog resolves preset layers. Nil means the built-in catalog.
	Catalog *Catalog

	// Launcher runs the executable. Nil means the process-wide
	// subprocess registry.
	Launcher Launcher

	// Logger, when set, logs composed command lines before execution.
	Logger *slog.Logger
}

// Sevenzip composes options into 7-Zip command lines and executes
// them. Construct with New; the facade is immutable afterwards and safe
// for concurrent use.
type Sevenzip struct {
	executable string
	guiExe     string
	managerExe string
	archive    string
	options    *Options
	extraArgs  []string
	gui        bool
	launcher   Launcher
	logger     *slog.Logger
}

// New builds a facade from cfg: locates the executable, resolves and
// merges the option layers, and probes for the GUI companions.
func New(cfg Config) (*Sevenzip, error) {
	executable := cfg.Executable
	if executable == "" {
		located, err := Locate()
		if err != nil {
			return nil, err
		}
		executable = located
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = Default()
	}
	layers := cfg.Layers
	if len(layers) == 0 {
		layers = []Layer{Preset("store")}
	}
	options := NewOptions()
	for _, layer := range layers {
		overlay := layer.overlay
		if layer.preset != "" {
			resolved, err := catalog.Resolve(layer.preset)
			if err != nil {
				return nil, err
			}
			overlay = resolved
		}
		if overlay == nil {
			continue
		}
		if err := options.Merge(overlay); err != nil {
			return nil, fmt.Errorf("merging option layers: %w", err)
		}
	}

	launcher := cfg.Launcher
	if launcher == nil {
		launcher = NewLauncher(nil)
	}

	s := &Sevenzip{
		executable: executable,
		archive:    cfg.Archive,
		options:    options,
		extraArgs:  append([]string(nil), cfg.ExtraArgs...),
		gui:        cfg.GUI,
		launcher:   launcher,
		logger:     cfg.Logger,
	}
	if gui, ok := locateAuxiliary(executable, auxGUI); ok {
		s.guiExe = gui
	}
	if manager, ok := locateAuxiliary(executable, auxFileManager); ok {
		s.managerExe = manager
	}
	return s, nil
}

// Options returns a copy of the composed option container.
func (s *Sevenzip) Options() *Options {
	return s.options.Clone()
}

// Executable returns the resolved console executable path.
func (s *Sevenzip) Executable() string {
	return s.executable
}

// Add creates or updates an archive from the given input paths.
func (s *Sevenzip) Add(ctx context.Context, archive string, paths ...string) error {
	argv, err := s.argv(opAdd, archive, "", paths)
	if err != nil {
		return err
	}
	return s.run(ctx, opAdd, argv)
}

// List returns the archive listing as printed by 7-Zip. Combine with
// the slt option for machine-readable output.
func (s *Sevenzip) List(ctx context.Context, archive string) (string, error) {
	argv, err := s.argv(opList, archive, "", nil)
	if err != nil {
		return "", err
	}
	s.log(opList, argv)
	out, runErr := s.launcher.Run(ctx, argv)
	if runErr != nil {
		return out, s.exitError(opList, runErr)
	}
	return out, nil
}

// Extract unpacks matching files without their directory structure.
// outDir overrides both the composed "o" option and the fallback
// destination "." as the single -o switch.
func (s *Sevenzip) Extract(ctx context.Context, archive, outDir string, files ...string) error {
	argv, err := s.argv(opExtract, archive, outDir, files)
	if err != nil {
		return err
	}
	return s.run(ctx, opExtract, argv)
}

// ExtractAll unpacks matching files with full paths.
func (s *Sevenzip) ExtractAll(ctx context.Context, archive, outDir string, files ...string) error {
	argv, err := s.argv(opExtractAll, archive, outDir, files)
	if err != nil {
		return err
	}
	return s.run(ctx, opExtractAll, argv)
}

// Test verifies archive integrity.
func (s *Sevenzip) Test(ctx context.Context, archive string) error {
	argv, err := s.argv(opTest, archive, "", nil)
	if err != nil {
		return err
	}
	return s.run(ctx, opTest, argv)
}

// OpenManager opens the archive in the 7-Zip file manager (Windows
// installations only) and returns without waiting for the window to
// close.
func (s *Sevenzip) OpenManager(archive string) (Handle, error) {
	if s.managerExe == "" {
		return nil, fmt.Errorf("open manager: %w", ErrExecutableNotFound)
	}
	target, err := s.archivePath(archive)
	if err != nil {
		return nil, err
	}
	argv := []string{s.managerExe, target}
	s.log("fm", argv)
	return s.launcher.Launch(argv)
}

// argv composes the command line for one operation: executable,
// subcommand token, the container's switches filtered to the
// operation's allowed set, bound and per-call extra arguments, the
// destination switch for extraction, then "--", the archive, and the
// file arguments.
func (s *Sevenzip) argv(op, archive, outDir string, files []string) ([]string, error) {
	target, err := s.archivePath(archive)
	if err != nil {
		return nil, err
	}
	pick := allowedSwitches[op]
	extract := op == opExtract || op == opExtractAll
	if extract {
		// The destination is rendered exactly once below, preferring
		// the explicit argument over the composed option.
		pick = pick.Clone()
		delete(pick, "o")
	}
	argv := []string{s.pickExecutable(), op}
	argv = append(argv, s.options.Args(pick)...)
	argv = append(argv, s.extraArgs...)
	if extract {
		if outDir == "" {
			outDir = "."
			if composed, ok := s.options.Get("o"); ok {
				dir, scalar := composed.(string)
				if !scalar {
					return nil, &TypeMismatchError{Key: "o", Want: KindScalar, Got: kindOf(composed)}
				}
				outDir = dir
			}
		}
		argv = append(argv, "-o"+outDir)
	}
	argv = append(argv, "--", target)
	argv = append(argv, files...)
	return argv, nil
}

func (s *Sevenzip) archivePath(archive string) (string, error) {
	if archive != "" {
		return archive, nil
	}
	if s.archive != "" {
		return s.archive, nil
	}
	return "", ErrMissingArchive
}

// pickExecutable prefers the GUI variant when requested and installed.
func (s *Sevenzip) pickExecutable() string {
	if s.gui && s.guiExe != "" {
		return s.guiExe
	}
	return s.executable
}

func (s *Sevenzip) run(ctx context.Context, op string, argv []string) error {
	s.log(op, argv)
	if _, err := s.launcher.Run(ctx, argv); err != nil {
		return s.exitError(op, err)
	}
	return nil
}

func (s *Sevenzip) log(op string, argv []string) {
	if s.logger != nil {
		s.logger.Info("invoking 7-zip", "op", op, "argv", argv)
	}
}

// exitError translates a launcher failure into the operation's error:
// nonzero exits become *ExitError, everything else passes through
// wrapped.
func (s *Sevenzip) exitError(op string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Op: op, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("7-zip %s: %w", op, err)
}
