// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// semper-7z drives the 7-Zip command line through named presets.
//
// Usage:
//
//	semper-7z a [flags] <archive> [paths...]
//	semper-7z l [flags] <archive>
//	semper-7z e [flags] <archive> [files...]
//	semper-7z x [flags] <archive> [files...]
//	semper-7z t [flags] <archive>
//	semper-7z fm <archive>
//	semper-7z presets [flags]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/movomo/semper/lib/config"
	"github.com/movomo/semper/lib/subproc"
	"github.com/movomo/semper/lib/version"
	"github.com/movomo/semper/sevenzip"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Children (GUI windows) left behind are torn down at exit.
	defer func() {
		purgeCtx, purgeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer purgeCancel()
		subproc.Purge(purgeCtx)
	}()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "a", "l", "e", "x", "t", "fm":
		err = invokeCmd(ctx, cmd, args)
	case "presets":
		err = presetsCmd(args)
	case "version", "--version", "-v":
		fmt.Printf("semper-7z %s\n", version.Full())
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var exitErr *sevenzip.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`semper-7z - Drive 7-Zip through named presets

USAGE
    semper-7z <command> [flags] <archive> [args...]

COMMANDS
    a        Add files to an archive
    l        List archive contents
    e        Extract files without directory structure
    x        Extract files with full paths
    t        Test archive integrity
    fm       Open the archive in the 7-Zip file manager
    presets  List available presets
    version  Show version

EXAMPLES
    # Pack a directory with the default "store" preset
    semper-7z a backup.zip ./photos

    # Maximum 7z compression with a larger solid block
    semper-7z a --preset maximum --preset .e1g mods.7z ./mods

    # Extract into a directory, suppressing overwrite prompts
    semper-7z x --output ./unpacked --yes mods.7z

    # Show the command line without running it
    semper-7z a --preset ultra --dry-run mods.7z ./mods

ENVIRONMENT
    SEMPER_CONFIG  Path to the tool configuration file
    SEMPER_DEBUG   Enable debug logging
`)
}

// newLogger builds the command logger: a text handler when stderr is
// a terminal, JSON when piped or redirected so scripted output stays
// machine-parseable.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("SEMPER_DEBUG") != "" {
		level = slog.LevelDebug
	}
	terminal := term.IsTerminal(int(os.Stderr.Fd()))
	return slog.New(commandHandler(os.Stderr, terminal, level))
}

func commandHandler(w io.Writer, terminal bool, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

// invokeCmd handles the subcommands that map onto facade operations.
func invokeCmd(ctx context.Context, op string, args []string) error {
	params, err := parseInvokeFlags(op, args)
	if err != nil {
		return err
	}
	facade, err := newFacade(params)
	if err != nil {
		return err
	}

	archive := params.archive
	files := params.files
	switch op {
	case "a":
		return facade.Add(ctx, archive, files...)
	case "l":
		listing, err := facade.List(ctx, archive)
		if err != nil {
			return err
		}
		fmt.Print(listing)
		return nil
	case "e":
		return facade.Extract(ctx, archive, params.output, files...)
	case "x":
		return facade.ExtractAll(ctx, archive, params.output, files...)
	case "t":
		return facade.Test(ctx, archive)
	case "fm":
		handle, err := facade.OpenManager(archive)
		if err != nil {
			return err
		}
		// The window outlives the deferred purge only if the user is
		// quick; wait so closing the manager ends the command.
		_, err = handle.Wait(ctx)
		return err
	}
	return fmt.Errorf("unhandled command %q", op)
}

// presetsCmd lists the catalog, including any user preset files.
func presetsCmd(args []string) error {
	params, err := parsePresetsFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadToolConfig(params.configPath)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg, params.presetFiles, params.presetsDir)
	if err != nil {
		return err
	}
	for _, name := range catalog.List() {
		fmt.Println(name)
	}
	return nil
}

// loadToolConfig reads the tool configuration: the --config flag, then
// SEMPER_CONFIG, then built-in defaults.
func loadToolConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// loadCatalog builds the preset catalog: built-ins, then the preset
// directory, then configured and flag-given files, later sources
// overriding earlier ones.
func loadCatalog(cfg *config.Config, files []string, dir string) (*sevenzip.Catalog, error) {
	catalog, err := sevenzip.NewCatalog()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = cfg.Presets.Directory
	}
	if dir != "" {
		if err := catalog.LoadDirectory(dir); err != nil {
			return nil, err
		}
	}
	for _, file := range append(append([]string(nil), cfg.Presets.Files...), files...) {
		if err := catalog.LoadFile(file); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
