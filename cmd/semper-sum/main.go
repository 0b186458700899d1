// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// semper-sum computes and verifies file checksums.
//
// Usage:
//
//	semper-sum [flags] <file>...
//	semper-sum --check <checksum-file>...
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/movomo/semper/lib/config"
	"github.com/movomo/semper/lib/digest"
	"github.com/movomo/semper/lib/version"
)

func main() {
	defaultAlgorithm := digest.DefaultAlgorithm
	if cfg, err := config.Load(); err == nil {
		defaultAlgorithm = cfg.Digest.Algorithm
	}

	var (
		algorithm   string
		write       bool
		check       bool
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("semper-sum", pflag.ContinueOnError)
	flagSet.StringVarP(&algorithm, "algorithm", "a", defaultAlgorithm,
		fmt.Sprintf("hash algorithm (%s)", strings.Join(digest.Algorithms(), ", ")))
	flagSet.BoolVarP(&write, "write", "w", false,
		"write a <file>.<algorithm>.txt checksum file next to each input")
	flagSet.BoolVarP(&check, "check", "c", false,
		"treat the arguments as checksum files and verify their entries")
	flagSet.BoolVarP(&showVersion, "version", "v", false, "show version")
	flagSet.Usage = func() {
		fmt.Fprint(os.Stderr, `semper-sum - Compute and verify file checksums

USAGE
    semper-sum [flags] <file>...
    semper-sum --check <checksum-file>...

`)
		fmt.Fprintln(os.Stderr, flagSet.FlagUsages())
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if showVersion {
		fmt.Printf("semper-sum %s\n", version.Info())
		return
	}
	if flagSet.NArg() == 0 {
		flagSet.Usage()
		os.Exit(1)
	}

	logger := newLogger()
	var err error
	if check {
		err = checkFiles(logger, flagSet.Args())
	} else {
		err = sumFiles(logger, flagSet.Args(), algorithm, write)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the command logger: a text handler when stderr is
// a terminal, JSON when piped or redirected so scripted output stays
// machine-parseable.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("SEMPER_DEBUG") != "" {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

func sumFiles(logger *slog.Logger, paths []string, algorithm string, write bool) error {
	for _, path := range paths {
		logger.Debug("computing digest", "file", path, "algorithm", algorithm)
		sum, err := digest.File(path, algorithm)
		if err != nil {
			return err
		}
		fmt.Println(sum)
		if write {
			sumPath := digest.SumFilePath(path, algorithm)
			logger.Debug("writing checksum file", "path", sumPath)
			if err := digest.WriteSumFile(sumPath, []digest.Sum{sum}); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkFiles verifies every entry of every checksum file. Individual
// mismatches are reported per line; any failure makes the command exit
// nonzero.
func checkFiles(logger *slog.Logger, sumPaths []string) error {
	failed := 0
	for _, sumPath := range sumPaths {
		logger.Debug("verifying checksum file", "path", sumPath)
		checks, err := digest.CheckFile(sumPath, "")
		if err != nil {
			return err
		}
		for _, check := range checks {
			if check.OK {
				fmt.Printf("%s: OK\n", check.Name)
			} else {
				fmt.Printf("%s: FAILED (%s)\n", check.Name, check.Detail)
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d checksum(s) did not match", failed)
	}
	return nil
}
