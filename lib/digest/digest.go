// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes file checksums and reads and writes them in
// the coreutils checksum-file format ("<hex> *<name>", one per line).
// Checksum files are named "<file>.<algorithm>.txt" so the algorithm
// survives in the file name.
package digest

import (
	"bufio"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultAlgorithm is used when the caller does not name one.
const DefaultAlgorithm = "sha256"

// newHash returns a fresh hash state for the named algorithm.
func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	case "md5":
		return md5.New(), nil
	case "crc32":
		return crc32.NewIEEE(), nil
	case "blake3":
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

// Algorithms returns the supported algorithm names, sorted.
func Algorithms() []string {
	names := []string{"sha1", "sha256", "sha512", "md5", "crc32", "blake3"}
	sort.Strings(names)
	return names
}

// Sum is one file's checksum.
type Sum struct {
	// Name is the file name as recorded in the checksum line, usually
	// relative to the checksum file.
	Name string

	// Hash is the hex-encoded digest.
	Hash string

	// Algorithm names the hash function that produced Hash.
	Algorithm string

	// Binary marks the file as hashed in binary mode ("*" separator).
	// Always true for sums this package computes; retained when
	// parsing so rewritten files round-trip.
	Binary bool
}

// String renders the checksum line without a trailing newline.
func (s Sum) String() string {
	separator := "  "
	if s.Binary {
		separator = " *"
	}
	return s.Hash + separator + s.Name
}

// File computes the checksum of the file at path, streaming its
// contents. The recorded name is the path's base name.
func File(path, algorithm string) (Sum, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return Sum{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Sum{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return Sum{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return Sum{
		Name:      filepath.Base(path),
		Hash:      hex.EncodeToString(h.Sum(nil)),
		Algorithm: algorithm,
		Binary:    true,
	}, nil
}

// Files computes checksums for every path, in order.
func Files(paths []string, algorithm string) ([]Sum, error) {
	sums := make([]Sum, 0, len(paths))
	for _, path := range paths {
		sum, err := File(path, algorithm)
		if err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

// SumFilePath returns the checksum file name for path:
// "<path>.<algorithm>.txt".
func SumFilePath(path, algorithm string) string {
	return path + "." + algorithm + ".txt"
}

// InferAlgorithm recovers the algorithm from a checksum file named by
// the SumFilePath convention.
func InferAlgorithm(sumPath string) (string, bool) {
	name := strings.TrimSuffix(filepath.Base(sumPath), ".txt")
	if name == filepath.Base(sumPath) {
		return "", false
	}
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return "", false
	}
	algorithm := name[dot+1:]
	if _, err := newHash(algorithm); err != nil {
		return "", false
	}
	return algorithm, true
}

// WriteSumFile writes sums to path in checksum-file format, one line
// per sum.
func WriteSumFile(path string, sums []Sum) error {
	var b strings.Builder
	for _, sum := range sums {
		b.WriteString(sum.String())
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing checksum file: %w", err)
	}
	return nil
}

// ParseLine parses one checksum line: the hex digest, one space, a "*"
// binary marker or a second space, and the file name.
func ParseLine(line, algorithm string) (Sum, error) {
	space := strings.IndexByte(line, ' ')
	if space <= 0 || space+2 > len(line) {
		return Sum{}, fmt.Errorf("malformed checksum line %q", line)
	}
	digest := line[:space]
	if _, err := hex.DecodeString(digest); err != nil {
		return Sum{}, fmt.Errorf("malformed checksum line %q: %w", line, err)
	}
	rest := line[space+1:]
	binary := strings.HasPrefix(rest, "*")
	name := strings.TrimPrefix(rest, "*")
	if !binary {
		name = strings.TrimPrefix(name, " ")
	}
	if name == "" {
		return Sum{}, fmt.Errorf("malformed checksum line %q", line)
	}
	return Sum{Name: name, Hash: digest, Algorithm: algorithm, Binary: binary}, nil
}

// ReadSumFile parses a checksum file. The algorithm is inferred from
// the file name when algorithm is empty.
func ReadSumFile(path, algorithm string) ([]Sum, error) {
	if algorithm == "" {
		inferred, ok := InferAlgorithm(path)
		if !ok {
			return nil, fmt.Errorf("%s: cannot infer hash algorithm from file name", path)
		}
		algorithm = inferred
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading checksum file: %w", err)
	}
	defer f.Close()
	var sums []Sum
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sum, err := ParseLine(line, algorithm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sums = append(sums, sum)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checksum file: %w", err)
	}
	return sums, nil
}

// Check is the verification result for one checksum line.
type Check struct {
	// Name is the file name from the checksum line.
	Name string

	// OK reports whether the file hashed to the recorded digest.
	OK bool

	// Detail explains a failure: "missing", "mismatch", or an I/O
	// error message. Empty on success.
	Detail string
}

// CheckFile verifies every entry of the checksum file at sumPath.
// Entry names resolve relative to the checksum file's directory. A
// failed entry is reported in its Check, not as an error; the error
// return covers the checksum file itself.
func CheckFile(sumPath, algorithm string) ([]Check, error) {
	sums, err := ReadSumFile(sumPath, algorithm)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(sumPath)
	checks := make([]Check, 0, len(sums))
	for _, want := range sums {
		check := Check{Name: want.Name}
		got, err := File(filepath.Join(dir, want.Name), want.Algorithm)
		switch {
		case errors.Is(err, os.ErrNotExist):
			check.Detail = "missing"
		case err != nil:
			check.Detail = err.Error()
		case !strings.EqualFold(got.Hash, want.Hash):
			check.Detail = "mismatch"
		default:
			check.OK = true
		}
		checks = append(checks, check)
	}
	return checks, nil
}
