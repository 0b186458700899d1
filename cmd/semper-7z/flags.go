// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/movomo/semper/lib/query"
	"github.com/movomo/semper/sevenzip"
)

// invokeParams holds the flags shared by the archive subcommands plus
// the positional arguments.
type invokeParams struct {
	presets     []string
	sets        []string
	include     []string
	exclude     []string
	archiveType string
	output      string
	password    bool
	yes         bool
	gui         bool
	executable  string
	presetFiles []string
	presetsDir  string
	configPath  string
	dryRun      bool

	archive string
	files   []string
}

func parseInvokeFlags(op string, args []string) (*invokeParams, error) {
	var params invokeParams
	flagSet := pflag.NewFlagSet(op, pflag.ContinueOnError)
	flagSet.StringArrayVarP(&params.presets, "preset", "P", nil,
		"preset to apply, repeatable; later presets override earlier ones")
	flagSet.StringArrayVarP(&params.sets, "set", "s", nil,
		"raw option assignment key=value, repeatable")
	flagSet.StringArrayVarP(&params.include, "include", "i", nil,
		"include pattern, repeatable")
	flagSet.StringArrayVarP(&params.exclude, "exclude", "e", nil,
		"exclude pattern, repeatable")
	flagSet.StringVarP(&params.archiveType, "type", "t", "",
		"archive type (7z, zip, tar, ...)")
	flagSet.BoolVarP(&params.password, "password", "p", false,
		"prompt for an archive password")
	flagSet.BoolVarP(&params.yes, "yes", "y", false,
		"assume yes on 7-Zip queries")
	flagSet.BoolVar(&params.gui, "gui", false,
		"use the windowed executable where installed")
	flagSet.StringVar(&params.executable, "executable", "",
		"path to the 7-Zip executable (default: located automatically)")
	flagSet.StringArrayVar(&params.presetFiles, "presets-file", nil,
		"additional preset file (YAML or JSONC), repeatable")
	flagSet.StringVar(&params.presetsDir, "presets-dir", "",
		"preset directory (default: <user config dir>/semper/presets)")
	flagSet.StringVar(&params.configPath, "config", "",
		"tool configuration file (default: $SEMPER_CONFIG)")
	flagSet.BoolVarP(&params.dryRun, "dry-run", "n", false,
		"print the composed command line instead of running it")
	if op == "e" || op == "x" {
		flagSet.StringVarP(&params.output, "output", "o", "",
			"destination directory (default: the composed o option, then \".\")")
	}
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		return nil, fmt.Errorf("missing archive path")
	}
	params.archive = rest[0]
	params.files = rest[1:]
	return &params, nil
}

type presetsParams struct {
	presetFiles []string
	presetsDir  string
	configPath  string
}

func parsePresetsFlags(args []string) (*presetsParams, error) {
	var params presetsParams
	flagSet := pflag.NewFlagSet("presets", pflag.ContinueOnError)
	flagSet.StringArrayVar(&params.presetFiles, "presets-file", nil,
		"additional preset file (YAML or JSONC), repeatable")
	flagSet.StringVar(&params.presetsDir, "presets-dir", "",
		"preset directory (default: <user config dir>/semper/presets)")
	flagSet.StringVar(&params.configPath, "config", "",
		"tool configuration file (default: $SEMPER_CONFIG)")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	return &params, nil
}

// newFacade composes the facade from the parsed flags and the tool
// configuration: presets first (defaulting to the configured preset
// when none are named), then an overlay built from the ad-hoc flags.
func newFacade(params *invokeParams) (*sevenzip.Sevenzip, error) {
	toolCfg, err := loadToolConfig(params.configPath)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(toolCfg, params.presetFiles, params.presetsDir)
	if err != nil {
		return nil, err
	}

	overlay, err := overlayFromFlags(params)
	if err != nil {
		return nil, err
	}
	var layers []sevenzip.Layer
	presets := params.presets
	if len(presets) == 0 {
		presets = []string{toolCfg.SevenZip.DefaultPreset}
	}
	for _, name := range presets {
		layers = append(layers, sevenzip.Preset(name))
	}
	layers = append(layers, sevenzip.Overlay(overlay))

	executable := params.executable
	if executable == "" {
		executable = toolCfg.SevenZip.Executable
	}
	cfg := sevenzip.Config{
		Layers:     layers,
		ExtraArgs:  toolCfg.SevenZip.ExtraArgs,
		GUI:        params.gui || toolCfg.SevenZip.GUI,
		Executable: executable,
		Catalog:    catalog,
		Logger:     newLogger(),
	}
	if params.dryRun {
		cfg.Launcher = printLauncher{}
	}
	return sevenzip.New(cfg)
}

func overlayFromFlags(params *invokeParams) (*sevenzip.Options, error) {
	overlay := sevenzip.NewOptions()
	for _, assignment := range params.sets {
		key, value, found := strings.Cut(assignment, "=")
		if !found {
			return nil, fmt.Errorf("--set %q: want key=value", assignment)
		}
		if err := overlay.Set(key, value); err != nil {
			return nil, err
		}
	}
	if params.archiveType != "" {
		if err := overlay.Set("t", params.archiveType); err != nil {
			return nil, err
		}
	}
	if len(params.include) > 0 {
		overlay.Include(params.include...)
	}
	if len(params.exclude) > 0 {
		overlay.Exclude(params.exclude...)
	}
	if params.yes {
		overlay.Yes(true)
	}
	if params.password {
		secret, err := query.Password("Archive password: ")
		if err != nil {
			return nil, err
		}
		overlay.Password(secret)
	}
	return overlay, nil
}

// printLauncher renders the composed command line instead of running
// it, for --dry-run.
type printLauncher struct{}

func (printLauncher) Launch(argv []string) (sevenzip.Handle, error) {
	fmt.Println(strings.Join(argv, " "))
	return doneHandle{}, nil
}

func (printLauncher) Run(_ context.Context, argv []string) (string, error) {
	fmt.Println(strings.Join(argv, " "))
	return "", nil
}

// doneHandle is an already-exited Handle for launches that never
// happened.
type doneHandle struct{}

func (doneHandle) PID() int { return 0 }

func (doneHandle) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (doneHandle) ExitCode() (int, bool) { return 0, true }

func (doneHandle) Wait(context.Context) (int, error) { return 0, nil }
