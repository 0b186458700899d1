// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Catalog is a registry of named, ready-made option bundles. Built-in
// presets are parsed at construction; user preset files may be loaded
// on top before the catalog is handed out. Resolution always returns
// an independent copy, so catalog entries are never mutated by
// callers.
//
// Load built-ins and user files during startup, then treat the catalog
// as read-only; concurrent Resolve/List calls are safe once loading is
// done.
type Catalog struct {
	presets map[string]*Options
	logger  *slog.Logger
}

// NewCatalog returns a catalog holding the built-in presets.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{presets: make(map[string]*Options)}
	if err := c.loadYAML([]byte(builtinPresetsYAML), "built-in presets"); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLogger enables logging of preset loading and resolution.
func (c *Catalog) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Catalog) log(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

// LoadFile loads presets from a YAML (.yaml, .yml) or JSONC (.json,
// .jsonc) file. Later files override same-named entries wholesale;
// presets do not merge across files (merging is the caller's job via
// the preset chain).
func (c *Catalog) LoadFile(path string) error {
	c.log("loading presets from file", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = c.loadYAML(data, path)
	case ".json", ".jsonc":
		err = c.loadJSONC(data, path)
	default:
		err = fmt.Errorf("%s: unsupported preset file extension", path)
	}
	return err
}

// LoadDirectory loads every preset file in dir, in name order. A
// missing directory is not an error.
func (c *Catalog) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json", ".jsonc":
			if err := c.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) loadYAML(data []byte, source string) error {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	return c.install(file, source)
}

// loadJSONC strips // comments, /* block comments */ and trailing
// commas before regular JSON decoding.
func (c *Catalog) loadJSONC(data []byte, source string) error {
	var file presetFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	return c.install(file, source)
}

func (c *Catalog) install(file presetFile, source string) error {
	names := make([]string, 0, len(file.Presets))
	for name := range file.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts, err := file.Presets[name].build()
		if err != nil {
			return fmt.Errorf("%s: preset %q: %w", source, name, err)
		}
		c.presets[name] = opts
	}
	c.log("loaded presets", "source", source, "count", len(names))
	return nil
}

// Resolve returns an independent copy of the named preset. Unknown
// names fail with *NotFoundError; the catalog is never modified.
func (c *Catalog) Resolve(name string) (*Options, error) {
	preset, ok := c.presets[name]
	if !ok {
		c.log("preset not found", "name", name)
		return nil, &NotFoundError{Name: name}
	}
	c.log("preset resolved", "name", name)
	return preset.Clone(), nil
}

// List returns all preset names in sorted order.
func (c *Catalog) List() []string {
	names := make([]string, 0, len(c.presets))
	for name := range c.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the process-wide catalog holding only the built-in
// presets. It is constructed once and never mutated; Resolve hands out
// copies.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := NewCatalog()
		if err != nil {
			// The built-in catalog is compiled in; failing to parse it
			// is a bug, not a runtime condition.
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// presetFile is the on-disk preset catalog format, shared by the YAML
// and JSONC loaders.
type presetFile struct {
	Presets map[string]presetSpec `yaml:"presets" json:"presets"`
}

type presetSpec struct {
	Options map[string]any `yaml:"options" json:"options"`
	Methods []methodSpec   `yaml:"methods" json:"methods"`
}

type methodSpec struct {
	Name   string            `yaml:"name" json:"name"`
	Params map[string]string `yaml:"params" json:"params"`
	Offset int               `yaml:"offset" json:"offset"`
}

// build converts a parsed spec into a validated container. Keys apply
// in sorted order so a domain violation is reported deterministically.
func (spec presetSpec) build() (*Options, error) {
	opts := NewOptions()
	keys := make([]string, 0, len(spec.Options))
	for key := range spec.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value, err := convertOptionValue(key, spec.Options[key])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		if err := opts.Set(key, value); err != nil {
			return nil, err
		}
	}
	for _, ms := range spec.Methods {
		method, err := ms.construct()
		if err != nil {
			return nil, err
		}
		opts.Chain().Append(method)
	}
	return opts, nil
}

// convertOptionValue maps decoded YAML/JSON values onto the container
// value types. Lists become sets for keys whose schema declares the
// set kind, sequences otherwise.
func convertOptionValue(key string, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		if v == math.Trunc(v) {
			return strconv.Itoa(int(v)), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		// A boolean has no single 7-Zip spelling ("on", "", "-").
		// Insist on the quoted string so the file says what gets
		// rendered.
		return nil, fmt.Errorf("boolean value; quote it (\"on\", \"off\", ...)")
	case []any:
		elems := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("list element %v is not a string", e)
			}
			elems = append(elems, s)
		}
		if spec, ok := optionSchema[key]; ok && spec.hasKind && spec.kind == KindSet {
			return NewStringSet(elems...), nil
		}
		return elems, nil
	case map[string]any:
		entries := make(map[string]string, len(v))
		for k, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("mapping value %v is not a string", e)
			}
			entries[k] = s
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

// construct builds the chain entry a methodSpec names. Parameters
// outside a family's allowed keys are silently dropped, same as the
// FromMap constructors.
func (ms methodSpec) construct() (Method, error) {
	switch strings.ToLower(ms.Name) {
	case "lzma":
		return NewLZMAFromMap(ms.Params), nil
	case "lzma2":
		return NewLZMA2FromMap(ms.Params), nil
	case "ppmd":
		return NewPPMdFromMap(ms.Params), nil
	case "bzip2":
		return NewBZip2(), nil
	case "deflate":
		return NewDeflate(), nil
	case "copy":
		return NewCopy(), nil
	case "delta":
		f := NewDelta()
		if ms.Offset > 0 {
			f.Offset(ms.Offset)
		}
		return f, nil
	case "bcj":
		return NewBCJ(), nil
	case "bcj2":
		return NewBCJ2FromMap(ms.Params), nil
	case "arm":
		return NewARM(), nil
	case "armt":
		return NewARMT(), nil
	case "ia64":
		return NewIA64(), nil
	case "ppc":
		return NewPPC(), nil
	case "sparc":
		return NewSPARC(), nil
	default:
		return nil, fmt.Errorf("unknown method %q", ms.Name)
	}
}

// builtinPresetsYAML defines the built-in preset catalog: quality
// tiers, small mix-ins meant to be merged atop a base preset, and two
// task-specific bundles for double-pass game-mod archiving.
const builtinPresetsYAML = `
presets:
  # Quality tiers. The zip tiers exist for compatibility targets; the
  # 7z tiers trade time for ratio.
  store:
    options:
      t: zip
      mx: "0"
      mcu: "on"
      x: &default-exclude
        - r!desktop.ini
        - r!thumbs.db*

  normal:
    options:
      t: zip
      mx: "5"
      mcu: "on"
      x: *default-exclude

  fastest:
    options:
      t: 7z
      slp: ""
      mx: "1"
      mmt: "on"
      x: *default-exclude

  fast:
    options:
      t: 7z
      slp: ""
      mx: "3"
      mmt: "on"
      x: *default-exclude

  normal-7z:
    options:
      t: 7z
      slp: ""
      mx: "5"
      mmt: "on"
      ms: 512m
      x: *default-exclude

  maximum:
    options:
      t: 7z
      slp: ""
      mx: "7"
      mmt: "on"
      ms: 1g
      x: *default-exclude

  ultra:
    options:
      t: 7z
      slp: ""
      mx: "9"
      mmt: "on"
      ms: 2g
      x: *default-exclude

  extreme:
    options:
      t: 7z
      slp: ""
      mx: "9"
      mmt: "2"
      x: *default-exclude
    methods:
      - name: lzma2
        params:
          d: "29"

  # Mix-ins: a few override keys merged atop a base preset.
  .qs:
    options:
      mqs: "on"
  .e1g:
    options:
      mqs: "on"
      ms: e1g
  .e2g:
    options:
      mqs: "on"
      ms: e2g
  .e4g:
    options:
      mqs: "on"
      ms: e4g
  .mt:
    options:
      mmt: "on"
  .mt2:
    options:
      mmt: "2"
  .mt4:
    options:
      mmt: "4"
  .mt8:
    options:
      mmt: "8"

  # Double-pass archiving for game mods: pass 1 packs everything solid
  # except the frequently-patched metadata files, pass 2 appends those
  # files non-solid so they stay cheap to update.
  obmod-pass1:
    options:
      t: 7z
      slp: ""
      mx: "9"
      ms: 1g
      x:
        - r!desktop.ini
        - r!thumbs.db*
        - &obmod-ini r!*.ini
        - &obmod-esm r!*.esm
        - &obmod-esp r!*.esp

  obmod-pass2:
    options:
      t: 7z
      slp: ""
      mx: "9"
      ms: "off"
      x:
        - r!*
      i:
        - *obmod-ini
        - *obmod-esm
        - *obmod-esp
`
