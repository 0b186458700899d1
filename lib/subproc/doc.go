// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// Package subproc launches and tracks child processes.
//
// A Registry keeps every child it started, running or finished, until
// Tidy or Purge removes it. This gives callers a live inventory: list
// what is running, grep by command line, render a status table, and
// terminate everything on shutdown. Run is the synchronous variant for
// children whose output the caller consumes.
package subproc
