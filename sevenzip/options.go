// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"sort"
	"strings"
)

// keySpec declares the schema for a well-known option key: a container
// kind (pre-initialized on merge) and/or an accepted-value domain for
// scalars. Keys absent from the schema are unconstrained; their kind is
// fixed by the first value stored.
type keySpec struct {
	kind    Kind
	hasKind bool
	accept  []string
}

// optionSchema declares the constrained option keys once, instead of
// inferring a key's kind from whatever value happened to arrive first.
var optionSchema = map[string]keySpec{
	"ao":  {accept: []string{"a", "s", "t", "u"}},
	"i":   {kind: KindSet, hasKind: true},
	"x":   {kind: KindSet, hasKind: true},
	"o":   {kind: KindScalar, hasKind: true},
	"slp": {accept: []string{"", "-"}},
	"ssc": {accept: []string{"", "-"}},
	"y":   {accept: []string{""}},
	"mx":  {accept: []string{"0", "1", "3", "5", "7", "9"}},
	"myx": {accept: []string{"0", "1", "3", "5", "7", "9"}},
	"mqs": {accept: []string{"on", "off"}},
	"mhc": {accept: []string{"on", "off"}},
	"mhe": {accept: []string{"on", "off"}},
}

// Options is a 7-Zip switch container: a key-value store with per-key
// validation plus an attached method/filter chain. Values are owned by
// the container; Set and Merge copy container-kind values in, and Get
// copies them out.
type Options struct {
	values map[string]any
	chain  Chain
}

// NewOptions returns an empty container.
func NewOptions() *Options {
	return &Options{values: make(map[string]any)}
}

// Len returns the number of stored keys.
func (o *Options) Len() int { return len(o.values) }

// Keys returns the stored keys in sorted order.
func (o *Options) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for key := range o.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored for key. Container-kind values are
// returned as independent copies; the container's own state can only
// be changed through Set, Merge, and the fluent setters.
func (o *Options) Get(key string) (any, bool) {
	value, ok := o.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

// Set validates and stores a value for key. Scalars are checked
// against the key's accepted-value domain (*DomainError on violation);
// the value kind is checked against the key's declared kind and
// against any value already stored (*TypeMismatchError). Accepted
// value types: string, int, StringSet, []string, map[string]string.
func (o *Options) Set(key string, value any) error {
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}
	if err := o.check(key, normalized); err != nil {
		return err
	}
	o.values[key] = cloneValue(normalized)
	return nil
}

// mustSet backs the fluent setters, whose keys are fixed at compile
// time. It panics on a domain violation: passing a literal value
// outside an enumerated domain is a programmer error, like a malformed
// regexp literal. Use Set for checked assignment of runtime values.
func (o *Options) mustSet(key string, value any) {
	if err := o.Set(key, value); err != nil {
		panic(err)
	}
}

// check validates a prospective value for key against the schema and
// the currently stored value, without mutating anything.
func (o *Options) check(key string, normalized any) error {
	kind := kindOf(normalized)
	spec, hasSpec := optionSchema[key]
	if hasSpec {
		if spec.hasKind && kind != spec.kind {
			return &TypeMismatchError{Key: key, Want: spec.kind, Got: kind}
		}
		if spec.accept != nil && kind == KindScalar {
			value := normalized.(string)
			accepted := false
			for _, a := range spec.accept {
				if value == a {
					accepted = true
					break
				}
			}
			if !accepted {
				return &DomainError{Key: key, Value: value, Accepted: spec.accept}
			}
		}
	}
	if current, ok := o.values[key]; ok {
		if have := kindOf(current); have != kind {
			return &TypeMismatchError{Key: key, Want: have, Got: kind}
		}
	}
	return nil
}

// Delete removes key from the container.
func (o *Options) Delete(key string) {
	delete(o.values, key)
}

// Chain returns the container's method/filter chain for appending.
func (o *Options) Chain() *Chain {
	return &o.chain
}

// Merge folds other into the container. Dispatch is per key on the
// stored value's kind: scalars are overridden, sets unioned, sequences
// appended, mappings updated. Unknown keys adopt other's value, after
// pre-initializing an empty container for keys whose schema declares a
// container kind. Kind disagreement fails with *TypeMismatchError and
// scalar domain violations with *DomainError; every entry is validated
// before any is applied, so a failed merge leaves the container
// unchanged.
//
// The two chains concatenate, the receiver's entries first.
func (o *Options) Merge(other *Options) error {
	keys := other.Keys()
	for _, key := range keys {
		if err := o.check(key, other.values[key]); err != nil {
			return err
		}
	}
	for _, key := range keys {
		o.apply(key, other.values[key])
	}
	o.chain.Append(other.chain.Clone().items...)
	return nil
}

// apply merges one validated value into the container.
func (o *Options) apply(key string, value any) {
	current, ok := o.values[key]
	if !ok {
		if spec, hasSpec := optionSchema[key]; hasSpec && spec.hasKind && spec.kind != KindScalar {
			// Pre-initialize the declared container kind so the first
			// merge accumulates instead of adopting the caller's value
			// wholesale.
			switch spec.kind {
			case KindSet:
				current = StringSet{}
			case KindList:
				current = []string(nil)
			case KindDict:
				current = map[string]string{}
			}
			o.values[key] = current
			ok = true
		}
	}
	if !ok {
		o.values[key] = cloneValue(value)
		return
	}
	switch have := current.(type) {
	case StringSet:
		have.Union(value.(StringSet))
	case []string:
		o.values[key] = append(have, value.([]string)...)
	case map[string]string:
		for k, v := range value.(map[string]string) {
			have[k] = v
		}
	default:
		o.values[key] = value
	}
}

// MergeAll applies Merge for each container in order: later containers
// win ties for scalar keys and accumulate for container kinds.
func (o *Options) MergeAll(others ...*Options) error {
	for _, other := range others {
		if err := o.Merge(other); err != nil {
			return err
		}
	}
	return nil
}

// Args serializes the container into command-line switches. Keys
// render in sorted order as "-<key><value>"; keys beginning with "m"
// get "=" between key and value (7-Zip method-switch syntax). Sets and
// sequences render as one switch per element (sets sorted), mappings
// as one "<k>=<v>" switch per sorted entry.
//
// If pick is non-nil, only keys it contains are rendered; keys
// beginning with "m" are governed by the "m" entry, which also gates
// the method/filter chain.
func (o *Options) Args(pick StringSet) []string {
	var args []string
	for _, key := range o.Keys() {
		if pick != nil && !pickAllows(pick, key) {
			continue
		}
		flag := "-" + key
		if strings.HasPrefix(key, "m") {
			flag += "="
		}
		switch value := o.values[key].(type) {
		case string:
			args = append(args, flag+value)
		case StringSet:
			for _, e := range value.Sorted() {
				args = append(args, flag+e)
			}
		case []string:
			for _, e := range value {
				args = append(args, flag+e)
			}
		case map[string]string:
			entries := make([]string, 0, len(value))
			for k := range value {
				entries = append(entries, k)
			}
			sort.Strings(entries)
			for _, k := range entries {
				args = append(args, flag+k+"="+value[k])
			}
		}
	}
	if pick == nil || pick.Contains("m") {
		args = append(args, o.chain.Serialize()...)
	}
	return args
}

// pickAllows reports whether key passes the allowed-key filter. The
// "m" entry stands for the whole method-switch family (mx, ms, mmt,
// ...), matching how 7-Zip treats -m<param> switches as one switch.
func pickAllows(pick StringSet, key string) bool {
	if pick.Contains(key) {
		return true
	}
	return strings.HasPrefix(key, "m") && pick.Contains("m")
}

// Clone returns a deep copy: mutating the clone's sets, sequences,
// mappings, or chain never affects the original.
func (o *Options) Clone() *Options {
	clone := &Options{
		values: make(map[string]any, len(o.values)),
		chain:  o.chain.Clone(),
	}
	for key, value := range o.values {
		clone.values[key] = cloneValue(value)
	}
	return clone
}
