// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fakeLauncher records composed command lines instead of executing
// them.
type fakeLauncher struct {
	argv   [][]string
	stdout string
	err    error
}

func (l *fakeLauncher) Launch(argv []string) (Handle, error) {
	l.argv = append(l.argv, argv)
	return fakeHandle{}, l.err
}

func (l *fakeLauncher) Run(_ context.Context, argv []string) (string, error) {
	l.argv = append(l.argv, argv)
	return l.stdout, l.err
}

type fakeHandle struct{}

func (fakeHandle) PID() int { return 42 }

func (fakeHandle) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (fakeHandle) ExitCode() (int, bool) { return 0, true }

func (fakeHandle) Wait(context.Context) (int, error) { return 0, nil }

func newTestFacade(t *testing.T, cfg Config, launcher *fakeLauncher) *Sevenzip {
	t.Helper()
	cfg.Executable = "/opt/7z/7zz"
	cfg.Launcher = launcher
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAddComposesCommandLine(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{}, launcher)

	if err := s.Add(context.Background(), "backup.zip", "photos", "docs"); err != nil {
		t.Fatal(err)
	}
	if len(launcher.argv) != 1 {
		t.Fatalf("launched %d commands, want 1", len(launcher.argv))
	}
	got := launcher.argv[0]
	want := []string{
		"/opt/7z/7zz", "a",
		"-mcu=on", "-mx=0", "-tzip",
		"-xr!desktop.ini", "-xr!thumbs.db*",
		"--", "backup.zip", "photos", "docs",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %v, want %v", got, want)
	}
}

func TestTestOmitsMethodSwitches(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{Layers: []Layer{Preset("ultra")}}, launcher)

	if err := s.Test(context.Background(), "a.7z"); err != nil {
		t.Fatal(err)
	}
	argv := launcher.argv[0]
	if argv[1] != "t" {
		t.Fatalf("subcommand = %q, want t", argv[1])
	}
	joined := strings.Join(argv, " ")
	for _, banned := range []string{"-mx", "-ms", "-mmt", "-t7z", "-slp"} {
		if strings.Contains(joined, banned) {
			t.Errorf("test command line %q carries %q", joined, banned)
		}
	}
	if !strings.Contains(joined, "-xr!desktop.ini") {
		t.Errorf("test command line %q lost the exclude patterns", joined)
	}
}

func TestExtractRejectsNonScalarDestination(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{}, launcher)

	// Bypass Set, which rejects this state since "o" is declared
	// scalar; the facade must still fail with a typed error rather
	// than assume the stored kind.
	s.options.values["o"] = []string{"dest"}

	err := s.Extract(context.Background(), "a.7z", "")
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Extract error = %v, want *TypeMismatchError", err)
	}
	if mismatch.Key != "o" {
		t.Errorf("TypeMismatchError.Key = %q, want o", mismatch.Key)
	}
	if len(launcher.argv) != 0 {
		t.Errorf("launched %d commands, want none", len(launcher.argv))
	}
}

func TestExtractRendersExactlyOneDestination(t *testing.T) {
	tests := []struct {
		name    string
		layers  []Layer
		outDir  string
		wantOut string
	}{
		{"default destination", nil, "", "-o."},
		{"explicit argument", nil, "dest", "-odest"},
		{
			"composed option",
			[]Layer{Overlay(NewOptions().Output("composed"))},
			"",
			"-ocomposed",
		},
		{
			"argument beats composed option",
			[]Layer{Overlay(NewOptions().Output("composed"))},
			"dest",
			"-odest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher := &fakeLauncher{}
			layers := append([]Layer{Preset("store")}, tt.layers...)
			s := newTestFacade(t, Config{Layers: layers}, launcher)

			if err := s.ExtractAll(context.Background(), "a.7z", tt.outDir); err != nil {
				t.Fatal(err)
			}
			argv := launcher.argv[0]
			count := 0
			var rendered string
			for _, arg := range argv {
				if strings.HasPrefix(arg, "-o") {
					count++
					rendered = arg
				}
			}
			if count != 1 {
				t.Fatalf("argv %v renders %d -o switches, want 1", argv, count)
			}
			if rendered != tt.wantOut {
				t.Errorf("destination = %q, want %q", rendered, tt.wantOut)
			}
		})
	}
}

func TestSeparatorPrecedesArchive(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{}, launcher)

	if err := s.Add(context.Background(), "-weird.zip", "file"); err != nil {
		t.Fatal(err)
	}
	argv := launcher.argv[0]
	sep := -1
	for i, arg := range argv {
		if arg == "--" {
			sep = i
			break
		}
	}
	if sep < 0 {
		t.Fatalf("argv %v has no -- separator", argv)
	}
	if argv[sep+1] != "-weird.zip" {
		t.Errorf("argv[%d] = %q, want the archive right after --", sep+1, argv[sep+1])
	}
}

func TestBoundArchiveAndExtraArgs(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{
		Archive:   "bound.7z",
		ExtraArgs: []string{"-sccUTF-8"},
	}, launcher)

	if err := s.Test(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	argv := launcher.argv[0]
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "-sccUTF-8 --") {
		t.Errorf("argv %v should carry extra args before the separator", argv)
	}
	if argv[len(argv)-1] != "bound.7z" {
		t.Errorf("argv %v should end with the bound archive", argv)
	}
}

func TestMissingArchive(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{}, launcher)

	err := s.Add(context.Background(), "")
	if !errors.Is(err, ErrMissingArchive) {
		t.Errorf("Add error = %v, want ErrMissingArchive", err)
	}
	if len(launcher.argv) != 0 {
		t.Errorf("launched %d commands on a failed call, want 0", len(launcher.argv))
	}
}

func TestListReturnsOutput(t *testing.T) {
	launcher := &fakeLauncher{stdout: "Path = a.7z\n"}
	s := newTestFacade(t, Config{}, launcher)

	out, err := s.List(context.Background(), "a.7z")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Path = a.7z\n" {
		t.Errorf("List output = %q", out)
	}
	if got := launcher.argv[0][1]; got != "l" {
		t.Errorf("subcommand = %q, want l", got)
	}
}

func TestLayerComposition(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{
		Layers: []Layer{
			Preset("maximum"),
			Preset(".mt4"),
			Overlay(NewOptions().Exclude("*.bak")),
		},
	}, launcher)

	opts := s.Options()
	if got, _ := opts.Get("mmt"); got != "4" {
		t.Errorf("mmt = %v, want 4 (mix-in layer)", got)
	}
	if got, _ := opts.Get("mx"); got != "7" {
		t.Errorf("mx = %v, want 7 (base layer)", got)
	}
	value, _ := opts.Get("x")
	set := value.(StringSet)
	for _, want := range []string{"r!*.bak", "r!desktop.ini"} {
		if !set.Contains(want) {
			t.Errorf("x = %v, want to contain %q", set.Sorted(), want)
		}
	}
}

func TestUnknownPresetLayer(t *testing.T) {
	_, err := New(Config{
		Executable: "/opt/7z/7zz",
		Layers:     []Layer{Preset("nope")},
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("New error = %v, want *NotFoundError", err)
	}
}

func TestOpenManagerWithoutFileManager(t *testing.T) {
	launcher := &fakeLauncher{}
	s := newTestFacade(t, Config{}, launcher)

	_, err := s.OpenManager("a.7z")
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("OpenManager error = %v, want ErrExecutableNotFound", err)
	}
}

func TestExitErrorMessages(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{1, "7-zip a: warning (some files could not be processed) (exit 1)"},
		{2, "7-zip a: fatal error (exit 2)"},
		{3, "7-zip a: exit 3"},
	}
	for _, tt := range tests {
		err := &ExitError{Op: "a", Code: tt.code}
		if got := err.Error(); got != tt.want {
			t.Errorf("ExitError{%d} = %q, want %q", tt.code, got, tt.want)
		}
	}
}
