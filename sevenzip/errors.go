// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingArchive is returned by facade operations when no archive
// path was passed to the call and none was bound at construction.
var ErrMissingArchive = errors.New("missing archive path")

// ErrExecutableNotFound is returned by New when no 7-Zip executable
// could be located and none was configured explicitly.
var ErrExecutableNotFound = errors.New("7-zip executable not found")

// DomainError reports an assignment outside a key's declared domain:
// either the key itself is unknown to the parameter set, or the value
// is not in the key's accepted-value set.
type DomainError struct {
	// Key is the option or parameter key that rejected the assignment.
	Key string

	// Value is the offending value. Empty when the key itself is the
	// problem.
	Value string

	// Accepted lists the legal values for Key. Nil when the key itself
	// is unknown.
	Accepted []string
}

func (e *DomainError) Error() string {
	if e.Accepted == nil {
		return fmt.Sprintf("unknown key %q", e.Key)
	}
	return fmt.Sprintf("value %q for key %q must be one of: %s",
		e.Value, e.Key, strings.Join(e.Accepted, ", "))
}

// TypeMismatchError reports a merge or assignment whose value kind
// disagrees with the kind already stored (or declared) for a key.
type TypeMismatchError struct {
	Key  string
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("key %q holds %s values, got %s", e.Key, e.Want, e.Got)
}

// ExitError reports a 7-Zip invocation that exited nonzero, decoded
// per the documented exit codes.
type ExitError struct {
	// Op is the subcommand token that was run ("a", "l", "e", ...).
	Op string

	// Code is the child's exit code.
	Code int
}

// exitMeanings decodes the exit codes 7-Zip documents.
var exitMeanings = map[int]string{
	1:   "warning (some files could not be processed)",
	2:   "fatal error",
	7:   "command line error",
	8:   "not enough memory",
	255: "stopped by user",
}

func (e *ExitError) Error() string {
	if meaning, ok := exitMeanings[e.Code]; ok {
		return fmt.Sprintf("7-zip %s: %s (exit %d)", e.Op, meaning, e.Code)
	}
	return fmt.Sprintf("7-zip %s: exit %d", e.Op, e.Code)
}

// NotFoundError reports a preset name with no catalog entry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("preset not found: %s", e.Name)
}
