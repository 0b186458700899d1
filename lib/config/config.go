// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Semper tools.
//
// Configuration is loaded from a single file specified by:
//   - SEMPER_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery beyond the built-in
// defaults. This ensures deterministic, auditable configuration with
// no hidden overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for Semper tools.
type Config struct {
	// SevenZip configures the 7-Zip driver.
	SevenZip SevenZipConfig `yaml:"sevenzip"`

	// Presets configures where user preset files are loaded from.
	Presets PresetsConfig `yaml:"presets"`

	// Digest configures checksum defaults.
	Digest DigestConfig `yaml:"digest"`
}

// SevenZipConfig configures the 7-Zip driver.
type SevenZipConfig struct {
	// Executable overrides automatic location of the 7-Zip binary.
	Executable string `yaml:"executable"`

	// DefaultPreset is applied when a command names no preset.
	// Default: store
	DefaultPreset string `yaml:"default_preset"`

	// GUI prefers the windowed executable where installed.
	GUI bool `yaml:"gui"`

	// ExtraArgs are appended verbatim to every 7-Zip command line.
	ExtraArgs []string `yaml:"extra_args"`
}

// PresetsConfig configures preset file loading.
type PresetsConfig struct {
	// Directory is scanned for preset files (YAML/JSONC) at startup.
	// Default: <user config dir>/semper/presets
	Directory string `yaml:"directory"`

	// Files are loaded after Directory, in order; later files override
	// same-named presets.
	Files []string `yaml:"files"`
}

// DigestConfig configures checksum defaults.
type DigestConfig struct {
	// Algorithm is the default hash algorithm.
	// Default: sha256
	Algorithm string `yaml:"algorithm"`
}

// Default returns the default configuration. These defaults are used
// as a base before loading the config file, so every field has a
// sensible value when the file omits it.
func Default() *Config {
	presetsDir := ""
	if configDir, err := os.UserConfigDir(); err == nil {
		presetsDir = filepath.Join(configDir, "semper", "presets")
	}
	return &Config{
		SevenZip: SevenZipConfig{
			DefaultPreset: "store",
		},
		Presets: PresetsConfig{
			Directory: presetsDir,
		},
		Digest: DigestConfig{
			Algorithm: "sha256",
		},
	}
}

// Load loads configuration from the SEMPER_CONFIG environment
// variable. When the variable is unset the defaults are returned, so
// the tools work without any configuration file.
func Load() (*Config, error) {
	configPath := os.Getenv("SEMPER_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override its values. The only expansion performed is ${HOME} and
// similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.SevenZip.Executable = expandVars(c.SevenZip.Executable, vars)
	c.Presets.Directory = expandVars(c.Presets.Directory, vars)
	for i, file := range c.Presets.Files {
		c.Presets.Files[i] = expandVars(file, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.SevenZip.DefaultPreset == "" {
		errs = append(errs, fmt.Errorf("sevenzip.default_preset is required"))
	}
	if c.Digest.Algorithm == "" {
		errs = append(errs, fmt.Errorf("digest.algorithm is required"))
	}
	for _, file := range c.Presets.Files {
		switch filepath.Ext(file) {
		case ".yaml", ".yml", ".json", ".jsonc":
		default:
			errs = append(errs, fmt.Errorf("presets.files: %s: unsupported extension", file))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
