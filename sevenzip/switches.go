// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import "strconv"

// Fluent switch setters. Each is a thin validated wrapper over Set
// that returns the container for chaining:
//
//	opts := sevenzip.NewOptions().
//	    Type("7z").
//	    Level(9).
//	    Exclude("*.tmp")
//
// Setters whose key has an enumerated accepted-value domain panic on
// an out-of-domain literal (see mustSet); use Set for checked
// assignment of runtime values.

// OverwriteMode sets -ao, the overwrite mode during extraction:
// "a" overwrite all, "s" skip existing, "u" auto-rename extracting
// file, "t" auto-rename existing file.
func (o *Options) OverwriteMode(value string) *Options {
	o.mustSet("ao", value)
	return o
}

// Include adds -i include patterns with the default recurse ("r") and
// wildcard ("!") prefixes. Use IncludeRef for list files or explicit
// recursion control.
func (o *Options) Include(patterns ...string) *Options {
	return o.IncludeRef("r", "!", patterns...)
}

// IncludeRef adds -i include patterns. recurse is "r", "r-", or "r0";
// refType is "!" for wildcards or "@" for list files.
func (o *Options) IncludeRef(recurse, refType string, patterns ...string) *Options {
	o.addPatterns("i", recurse, refType, patterns)
	return o
}

// Exclude adds -x exclude patterns with the default recurse ("r") and
// wildcard ("!") prefixes. Use ExcludeRef for list files or explicit
// recursion control.
func (o *Options) Exclude(patterns ...string) *Options {
	return o.ExcludeRef("r", "!", patterns...)
}

// ExcludeRef adds -x exclude patterns. recurse is "r", "r-", or "r0";
// refType is "!" for wildcards or "@" for list files.
func (o *Options) ExcludeRef(recurse, refType string, patterns ...string) *Options {
	o.addPatterns("x", recurse, refType, patterns)
	return o
}

// addPatterns accumulates into the key's pattern set; repeated calls
// extend rather than replace, matching repeated -i/-x switches.
func (o *Options) addPatterns(key, recurse, refType string, patterns []string) {
	set, ok := o.values[key].(StringSet)
	if !ok {
		set = NewStringSet()
		o.values[key] = set
	}
	for _, pattern := range patterns {
		set.Add(recurse + refType + pattern)
	}
}

// Output sets -o, the destination directory for extraction.
func (o *Options) Output(path string) *Options {
	o.mustSet("o", path)
	return o
}

// Password sets -p. Interactive prompting belongs to the caller (see
// lib/query); this only records the value.
func (o *Options) Password(value string) *Options {
	o.mustSet("p", value)
	return o
}

// LargePages sets -slp, the Large Pages mode, which can speed up
// compression of large data sets at the cost of a startup pause.
func (o *Options) LargePages(enable bool) *Options {
	o.mustSet("slp", onDash(enable))
	return o
}

// CaseSensitive sets -ssc, case-sensitive matching of file names.
// 7-Zip defaults to sensitive on POSIX and insensitive on Windows.
func (o *Options) CaseSensitive(enable bool) *Options {
	o.mustSet("ssc", onDash(enable))
	return o
}

// Yes sets or clears -y, suppressing interactive 7-Zip queries such as
// overwrite prompts during extraction.
func (o *Options) Yes(enable bool) *Options {
	if enable {
		o.mustSet("y", "")
	} else {
		o.Delete("y")
	}
	return o
}

// Type sets -t, the archive type (7z, zip, tar, gzip, bzip2, xz, ...).
func (o *Options) Type(value string) *Options {
	o.mustSet("t", value)
	return o
}

// Methods appends compression methods and filters to the chain.
// Filters must precede the compression method they feed.
func (o *Options) Methods(methods ...Method) *Options {
	o.chain.Append(methods...)
	return o
}

// Level sets -mx, the compression level: 0 (store), 1, 3, 5, 7, or 9.
func (o *Options) Level(value int) *Options {
	o.mustSet("mx", strconv.Itoa(value))
	return o
}

// FileAnalysisLevel sets -myx, controlling how aggressively 7-Zip
// analyzes files to pick filters: 0, 1, 3, 5, 7, or 9.
func (o *Options) FileAnalysisLevel(value int) *Options {
	o.mustSet("myx", strconv.Itoa(value))
	return o
}

// Solid sets -ms, the solid-block specification: "on", "off", or a
// block limit such as "512m", "e1g" (per-extension blocks of 1 GiB).
func (o *Options) Solid(spec string) *Options {
	o.mustSet("ms", spec)
	return o
}

// SortByType sets -mqs, sorting files by extension within solid
// archives.
func (o *Options) SortByType(enable bool) *Options {
	o.mustSet("mqs", onOff(enable))
	return o
}

// Filter sets -mf, the global filter switch: "on", "off", or a filter
// identifier such as "BCJ2" or "Delta:4". Pass a chain entry's Name()
// to reference a constructed filter.
func (o *Options) Filter(value string) *Options {
	o.mustSet("mf", value)
	return o
}

// HeaderCompression sets -mhc, archive header compression.
func (o *Options) HeaderCompression(enable bool) *Options {
	o.mustSet("mhc", onOff(enable))
	return o
}

// HeaderEncryption sets -mhe, archive header encryption.
func (o *Options) HeaderEncryption(enable bool) *Options {
	o.mustSet("mhe", onOff(enable))
	return o
}

// Multithreading sets -mmt to "on" or "off".
func (o *Options) Multithreading(enable bool) *Options {
	o.mustSet("mmt", onOff(enable))
	return o
}

// Threads sets -mmt to an explicit thread count.
func (o *Options) Threads(n int) *Options {
	o.mustSet("mmt", strconv.Itoa(n))
	return o
}

func onOff(enable bool) string {
	if enable {
		return "on"
	}
	return "off"
}

// onDash renders the boolean switch style where presence of "-"
// disables: -slp enables, -slp- disables.
func onDash(enable bool) string {
	if enable {
		return ""
	}
	return "-"
}
