// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"os"
	"path/filepath"
)

// Auxiliary executable names next to the console 7-Zip binary. The GUI
// variants ship with the Windows distribution only; on other platforms
// lookup simply fails and the facade falls back to the console binary.
const (
	auxGUI         = "7zG.exe"
	auxFileManager = "7zFM.exe"
)

// Locate finds a 7-Zip executable: PATH lookup everywhere, with a
// registry-installed location checked first on Windows. It returns
// ErrExecutableNotFound when nothing turns up.
func Locate() (string, error) {
	return locateExecutable()
}

// locateAuxiliary resolves a companion executable (GUI launcher, file
// manager) installed next to the main binary.
func locateAuxiliary(main, name string) (string, bool) {
	if main == "" {
		return "", false
	}
	path := filepath.Join(filepath.Dir(main), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
