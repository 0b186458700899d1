// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetValidatesDomain(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr bool
	}{
		{"level in domain", "mx", "9", false},
		{"level out of domain", "mx", "4", true},
		{"level as int", "mx", 5, false},
		{"overwrite mode", "ao", "u", false},
		{"overwrite mode out of domain", "ao", "o", true},
		{"unconstrained key", "w", "/tmp", false},
		{"set kind key", "x", NewStringSet("r!*.log"), false},
		{"scalar for set kind key", "x", "r!*.log", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions()
			err := opts.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%q, %v) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestSetRejectsKindChange(t *testing.T) {
	opts := NewOptions()
	if err := opts.Set("v", "10m"); err != nil {
		t.Fatal(err)
	}
	err := opts.Set("v", []string{"10m", "20m"})
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Set error = %v, want *TypeMismatchError", err)
	}
	// The failed assignment must not have touched the stored value.
	got, _ := opts.Get("v")
	if got != "10m" {
		t.Errorf("stored value = %v after failed Set, want %q", got, "10m")
	}
}

func TestGetReturnsCopies(t *testing.T) {
	opts := NewOptions().Exclude("*.tmp")
	value, ok := opts.Get("x")
	if !ok {
		t.Fatal("Get(x) not found")
	}
	value.(StringSet).Add("r!*.log")
	again, _ := opts.Get("x")
	if again.(StringSet).Contains("r!*.log") {
		t.Error("mutating Get's result leaked into the container")
	}
}

func TestMergeSemanticsPerKind(t *testing.T) {
	base := NewOptions()
	if err := base.Set("t", "zip"); err != nil {
		t.Fatal(err)
	}
	if err := base.Set("x", NewStringSet("r!a", "r!b")); err != nil {
		t.Fatal(err)
	}
	if err := base.Set("v", []string{"10m"}); err != nil {
		t.Fatal(err)
	}

	overlay := NewOptions()
	if err := overlay.Set("t", "7z"); err != nil {
		t.Fatal(err)
	}
	if err := overlay.Set("x", NewStringSet("r!b", "r!c")); err != nil {
		t.Fatal(err)
	}
	if err := overlay.Set("v", []string{"20m"}); err != nil {
		t.Fatal(err)
	}
	if err := overlay.Set("mx", "9"); err != nil {
		t.Fatal(err)
	}

	if err := base.Merge(overlay); err != nil {
		t.Fatal(err)
	}

	if got, _ := base.Get("t"); got != "7z" {
		t.Errorf("scalar t = %v, want 7z (later layer wins)", got)
	}
	if got, _ := base.Get("x"); !reflect.DeepEqual(got.(StringSet).Sorted(), []string{"r!a", "r!b", "r!c"}) {
		t.Errorf("set x = %v, want union {r!a r!b r!c}", got.(StringSet).Sorted())
	}
	if got, _ := base.Get("v"); !reflect.DeepEqual(got, []string{"10m", "20m"}) {
		t.Errorf("sequence v = %v, want appended [10m 20m]", got)
	}
	if got, _ := base.Get("mx"); got != "9" {
		t.Errorf("adopted mx = %v, want 9", got)
	}
}

func TestMergeSetUnionIsOrderIndependent(t *testing.T) {
	make2 := func() (*Options, *Options) {
		a := NewOptions()
		if err := a.Set("x", NewStringSet("r!a")); err != nil {
			t.Fatal(err)
		}
		b := NewOptions()
		if err := b.Set("x", NewStringSet("r!b")); err != nil {
			t.Fatal(err)
		}
		return a, b
	}

	a, b := make2()
	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}
	c, d := make2()
	if err := d.Merge(c); err != nil {
		t.Fatal(err)
	}

	forward, _ := a.Get("x")
	reverse, _ := d.Get("x")
	if !reflect.DeepEqual(forward.(StringSet).Sorted(), reverse.(StringSet).Sorted()) {
		t.Errorf("set union depends on merge order: %v vs %v",
			forward.(StringSet).Sorted(), reverse.(StringSet).Sorted())
	}
	if !reflect.DeepEqual(forward.(StringSet).Sorted(), []string{"r!a", "r!b"}) {
		t.Errorf("set union = %v, want {r!a r!b}", forward.(StringSet).Sorted())
	}
}

func TestOutputDirIsScalarOnly(t *testing.T) {
	opts := NewOptions()
	err := opts.Set("o", []string{"dest"})
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Set(o, list) = %v, want *TypeMismatchError", err)
	}
	if mismatch.Want != KindScalar {
		t.Errorf("TypeMismatchError.Want = %v, want scalar", mismatch.Want)
	}
	if _, ok := opts.Get("o"); ok {
		t.Error("rejected assignment was stored")
	}
	if err := opts.Set("o", "dest"); err != nil {
		t.Errorf("Set(o, dest) = %v, want nil", err)
	}
}

func TestMergeIntoDeclaredContainerKind(t *testing.T) {
	// A set-kind key arriving on an empty container must accumulate,
	// not alias the overlay's set.
	overlay := NewOptions().Exclude("*.tmp")
	base := NewOptions()
	if err := base.Merge(overlay); err != nil {
		t.Fatal(err)
	}
	base.Exclude("*.log")
	if value, _ := overlay.Get("x"); value.(StringSet).Contains("r!*.log") {
		t.Error("merging aliased the overlay's set")
	}
}

func TestMergeValidatesBeforeApplying(t *testing.T) {
	base := NewOptions()
	if err := base.Set("t", "zip"); err != nil {
		t.Fatal(err)
	}

	overlay := NewOptions()
	if err := overlay.Set("t", "7z"); err != nil {
		t.Fatal(err)
	}
	// Bypass Set's validation to plant an out-of-domain scalar the way
	// a corrupted overlay would carry one.
	overlay.values["mx"] = "4"

	err := base.Merge(overlay)
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("Merge error = %v, want *DomainError", err)
	}
	// Nothing from the overlay may have been applied.
	if got, _ := base.Get("t"); got != "zip" {
		t.Errorf("t = %v after failed merge, want zip", got)
	}
	if _, ok := base.Get("mx"); ok {
		t.Error("mx present after failed merge")
	}
}

func TestMergeConcatenatesChains(t *testing.T) {
	base := NewOptions().Methods(NewBCJ2().DictSize("64m"))
	overlay := NewOptions().Methods(NewLZMA2().DictSize("29"))
	if err := base.Merge(overlay); err != nil {
		t.Fatal(err)
	}
	got := base.Chain().Serialize()
	want := []string{"-m0=BCJ2:d=64m", "-m1=LZMA2:d=29"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chain = %v, want %v", got, want)
	}
	// The merged entries are copies; the overlay's chain is unchanged.
	if overlay.Chain().Len() != 1 {
		t.Errorf("overlay chain Len() = %d, want 1", overlay.Chain().Len())
	}
}

func TestArgsRendering(t *testing.T) {
	opts := NewOptions().
		Type("7z").
		Level(9).
		Exclude("desktop.ini", "thumbs.db*").
		Yes(true)
	if err := opts.Set("v", []string{"10m", "20m"}); err != nil {
		t.Fatal(err)
	}

	got := opts.Args(nil)
	want := []string{
		"-mx=9",
		"-t7z",
		"-v10m",
		"-v20m",
		"-xr!desktop.ini",
		"-xr!thumbs.db*",
		"-y",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args(nil) = %v, want %v", got, want)
	}
}

func TestArgsPickFiltering(t *testing.T) {
	opts := NewOptions().
		Type("7z").
		Level(9).
		Exclude("*.tmp").
		Methods(NewLZMA2().DictSize("29"))

	got := opts.Args(NewStringSet("t"))
	want := []string{"-t7z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args({t}) = %v, want %v", got, want)
	}
}

func TestArgsPickMGovernsMethodFamily(t *testing.T) {
	opts := NewOptions().
		Type("7z").
		Level(9).
		Multithreading(true).
		Methods(NewLZMA2().DictSize("29"))

	got := opts.Args(NewStringSet("m"))
	want := []string{"-mmt=on", "-mx=9", "-m0=LZMA2:d=29"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args({m}) = %v, want %v", got, want)
	}
}

func TestIncludeExcludeAccumulate(t *testing.T) {
	opts := NewOptions().
		Exclude("*.tmp").
		ExcludeRef("r0", "@", "listfile.txt")
	value, _ := opts.Get("x")
	got := value.(StringSet).Sorted()
	want := []string{"r!*.tmp", "r0@listfile.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("x = %v, want %v", got, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	opts := NewOptions().
		Type("7z").
		Exclude("*.tmp").
		Methods(NewLZMA2().DictSize("29"))
	clone := opts.Clone()
	clone.Exclude("*.log")
	clone.Methods(NewCopy())
	if err := clone.Set("t", "zip"); err != nil {
		t.Fatal(err)
	}

	if value, _ := opts.Get("x"); value.(StringSet).Contains("r!*.log") {
		t.Error("clone's exclude leaked into the original")
	}
	if opts.Chain().Len() != 1 {
		t.Errorf("original chain Len() = %d, want 1", opts.Chain().Len())
	}
	if got, _ := opts.Get("t"); got != "7z" {
		t.Errorf("original t = %v, want 7z", got)
	}
}

func TestFluentSetterPanicsOutOfDomain(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Level(4) did not panic")
		}
	}()
	NewOptions().Level(4)
}
