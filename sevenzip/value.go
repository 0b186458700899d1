// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind classifies option values and determines merge behavior: scalars
// override, sets union, sequences append, mappings update.
type Kind int

const (
	// KindScalar is a single string value.
	KindScalar Kind = iota
	// KindSet is an unordered set of strings, serialized sorted.
	KindSet
	// KindList is an ordered sequence of strings.
	KindList
	// KindDict is a string-to-string mapping.
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSet:
		return "set"
	case KindList:
		return "sequence"
	case KindDict:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StringSet is a set of strings used for set-kind option values such
// as include and exclude pattern lists.
type StringSet map[string]struct{}

// NewStringSet returns a set holding the given elements.
func NewStringSet(elems ...string) StringSet {
	s := make(StringSet, len(elems))
	s.Add(elems...)
	return s
}

// Add inserts elements into the set.
func (s StringSet) Add(elems ...string) {
	for _, e := range elems {
		s[e] = struct{}{}
	}
}

// Contains reports whether e is a member.
func (s StringSet) Contains(e string) bool {
	_, ok := s[e]
	return ok
}

// Union inserts every element of other.
func (s StringSet) Union(other StringSet) {
	for e := range other {
		s[e] = struct{}{}
	}
}

// Sorted returns the elements in lexicographic order.
func (s StringSet) Sorted() []string {
	elems := make([]string, 0, len(s))
	for e := range s {
		elems = append(elems, e)
	}
	sort.Strings(elems)
	return elems
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	clone := make(StringSet, len(s))
	clone.Union(s)
	return clone
}

// normalizeValue coerces a caller-supplied value into one of the four
// stored representations: string, StringSet, []string, or
// map[string]string. Integers are accepted as scalars for convenience
// (compression levels, thread counts).
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case StringSet:
		return v, nil
	case []string:
		return v, nil
	case map[string]string:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported option value type %T", value)
	}
}

// kindOf returns the kind of a stored (normalized) value.
func kindOf(value any) Kind {
	switch value.(type) {
	case StringSet:
		return KindSet
	case []string:
		return KindList
	case map[string]string:
		return KindDict
	default:
		return KindScalar
	}
}

// cloneValue deep-copies a stored value. Scalars are immutable and
// returned as-is.
func cloneValue(value any) any {
	switch v := value.(type) {
	case StringSet:
		return v.Clone()
	case []string:
		return append([]string(nil), v...)
	case map[string]string:
		clone := make(map[string]string, len(v))
		for k, e := range v {
			clone[k] = e
		}
		return clone
	default:
		return v
	}
}
