// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package sevenzip

import (
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// locateExecutable checks the installer's registry key first (the
// installation directory is usually not on PATH), then falls back to
// PATH lookup for 7z and the reduced 7zr.
func locateExecutable() (string, error) {
	if dir, ok := installDirFromRegistry(); ok {
		path := filepath.Join(dir, "7z.exe")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	for _, name := range []string{"7z", "7zr"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrExecutableNotFound
}

func installDirFromRegistry() (string, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\7-Zip`, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer key.Close()
	for _, value := range []string{"Path64", "Path"} {
		if dir, _, err := key.GetStringValue(value); err == nil && dir != "" {
			return dir, true
		}
	}
	return "", false
}
