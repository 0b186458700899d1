// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileMatchesDirectDigest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", "semper fidelis")

	sum, err := File(path, "sha256")
	if err != nil {
		t.Fatal(err)
	}
	direct := sha256.Sum256([]byte("semper fidelis"))
	if want := hex.EncodeToString(direct[:]); sum.Hash != want {
		t.Errorf("Hash = %s, want %s", sum.Hash, want)
	}
	if sum.Name != "data.bin" {
		t.Errorf("Name = %q, want data.bin", sum.Name)
	}
	if !sum.Binary {
		t.Error("computed sums must be binary mode")
	}
}

func TestAllAlgorithmsProduceHex(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", "abc")
	for _, algorithm := range Algorithms() {
		sum, err := File(path, algorithm)
		if err != nil {
			t.Errorf("File(%s) error: %v", algorithm, err)
			continue
		}
		if _, err := hex.DecodeString(sum.Hash); err != nil {
			t.Errorf("File(%s) hash %q is not hex", algorithm, sum.Hash)
		}
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := File("whatever", "sha42")
	if err == nil {
		t.Error("File(sha42) did not fail")
	}
}

func TestSumStringFormat(t *testing.T) {
	sum := Sum{Name: "a.7z", Hash: "cafe", Binary: true}
	if got, want := sum.String(), "cafe *a.7z"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	sum.Binary = false
	if got, want := sum.String(), "cafe  a.7z"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantBin  bool
		wantErr  bool
	}{
		{"cafe *a.7z", "a.7z", true, false},
		{"cafe  a.7z", "a.7z", false, false},
		{"cafe *name with spaces.7z", "name with spaces.7z", true, false},
		{"cafe", "", false, true},
		{"xyz *a.7z", "", false, true},
		{"cafe *", "", false, true},
	}
	for _, tt := range tests {
		sum, err := ParseLine(tt.line, "sha256")
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLine(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if sum.Name != tt.wantName || sum.Binary != tt.wantBin {
			t.Errorf("ParseLine(%q) = %+v, want name %q binary %v",
				tt.line, sum, tt.wantName, tt.wantBin)
		}
	}
}

func TestInferAlgorithm(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"backup.7z.sha256.txt", "sha256", true},
		{"dir/backup.7z.blake3.txt", "blake3", true},
		{"backup.7z.txt", "", false},
		{"backup.sha256", "", false},
		{"backup.7z.sha42.txt", "", false},
	}
	for _, tt := range tests {
		got, ok := InferAlgorithm(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("InferAlgorithm(%q) = %q, %v; want %q, %v",
				tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWriteAndCheckRoundTrip(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.bin", "intact")
	bad := writeFile(t, dir, "bad.bin", "intact")

	sums, err := Files([]string{good, bad}, "sha256")
	if err != nil {
		t.Fatal(err)
	}
	sums = append(sums, Sum{Name: "gone.bin", Hash: sums[0].Hash, Algorithm: "sha256", Binary: true})

	sumPath := filepath.Join(dir, SumFilePath("archive.7z", "sha256"))
	if err := WriteSumFile(sumPath, sums); err != nil {
		t.Fatal(err)
	}

	// Corrupt one file after recording its checksum.
	if err := os.WriteFile(bad, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	checks, err := CheckFile(sumPath, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(checks) != 3 {
		t.Fatalf("got %d checks, want 3", len(checks))
	}
	byName := map[string]Check{}
	for _, check := range checks {
		byName[check.Name] = check
	}
	if !byName["good.bin"].OK {
		t.Errorf("good.bin failed: %s", byName["good.bin"].Detail)
	}
	if byName["bad.bin"].OK || byName["bad.bin"].Detail != "mismatch" {
		t.Errorf("bad.bin = %+v, want mismatch", byName["bad.bin"])
	}
	if byName["gone.bin"].OK || byName["gone.bin"].Detail != "missing" {
		t.Errorf("gone.bin = %+v, want missing", byName["gone.bin"])
	}
}

func TestSumFilePath(t *testing.T) {
	if got, want := SumFilePath("a.7z", "blake3"), "a.7z.blake3.txt"; got != want {
		t.Errorf("SumFilePath = %q, want %q", got, want)
	}
}
