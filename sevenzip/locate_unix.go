// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package sevenzip

import "os/exec"

// locateExecutable searches PATH for the console binaries in the order
// upstream ships them: 7zz (full), 7zzs (static), then the legacy
// p7zip name 7z.
func locateExecutable() (string, error) {
	for _, name := range []string{"7zz", "7zzs", "7z"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrExecutableNotFound
}
