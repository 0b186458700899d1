// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// Package sevenzip composes 7-Zip command-line options and drives the
// external 7-Zip executable.
//
// The package is an option-composition engine, not an archive library:
// it never reads or writes archive bytes itself. Callers build an
// [Options] container (directly, or by resolving named presets from a
// [Catalog]), bind it to a [Sevenzip] facade, and the facade produces
// the argument vector for each archive operation (add, list, extract,
// extract with paths, test) and hands it to a process-invocation
// collaborator.
//
// Option values have one of four kinds: scalar, string set, sequence,
// or mapping. The kind of each well-known key is declared once in a
// schema, and merging two containers dispatches on it: scalars
// override, sets union, sequences append, mappings update. Compression
// methods and filters form a separate ordered chain serialized with
// positional -m{N}= switches.
//
// All validation happens at assignment or merge time; a rejected
// operation leaves its container unchanged. Containers are not safe
// for concurrent mutation — resolve or clone a container per goroutine
// (copy-before-merge) when sharing presets.
package sevenzip
