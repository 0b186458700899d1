// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Chain ordering keys. Filters must run before compression methods, so
// a caller sorting a mixed chain by sort key gets a valid order.
const (
	sortKeyFilter = 0
	sortKeyMethod = 64
)

// Method is one entry of a compression method/filter chain. All the
// concrete families in this package implement it through an embedded
// [ParamSet].
type Method interface {
	// Name is the 7-Zip method identifier (possibly parameterized,
	// e.g. "Delta:4").
	Name() string

	// SortKey orders filters before compression methods.
	SortKey() int

	// Serialize renders the -m{index}= switch for this entry at the
	// given chain position.
	Serialize(index int) string

	// Clone returns an independent copy of the underlying parameter
	// set.
	Clone() *ParamSet
}

// ParamSet is a named parameter set for one compression method or
// filter. Each concrete family fixes its allowed-key domain at
// construction; assignments to keys outside that domain are rejected.
// Parameter order is preserved and significant for serialization.
type ParamSet struct {
	name    string
	sortKey int
	allowed map[string]bool
	order   []string
	values  map[string]string
}

func newParamSet(name string, sortKey int, allowedKeys ...string) ParamSet {
	allowed := make(map[string]bool, len(allowedKeys))
	for _, key := range allowedKeys {
		allowed[key] = true
	}
	return ParamSet{
		name:    name,
		sortKey: sortKey,
		allowed: allowed,
		values:  make(map[string]string),
	}
}

// Name returns the method identifier used in the serialized switch.
func (p *ParamSet) Name() string { return p.name }

// SortKey returns the chain ordering key.
func (p *ParamSet) SortKey() int { return p.sortKey }

// Set assigns a parameter value. Keys outside the family's allowed-key
// domain are rejected with a *DomainError.
func (p *ParamSet) Set(key, value string) error {
	if !p.allowed[key] {
		return &DomainError{Key: key}
	}
	p.set(key, value)
	return nil
}

// set stores a known-valid key. The fluent setters on the concrete
// families go through here; their keys are fixed at compile time.
func (p *ParamSet) set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.order = append(p.order, key)
	}
	p.values[key] = value
}

// setFiltered copies the allowed subset of initial, silently dropping
// unknown keys. This leniency is deliberate: callers may pass oversized
// generic mappings (e.g. a whole preset file section) and keep only
// what the family understands. Keys are applied in sorted order so the
// resulting serialization is deterministic.
func (p *ParamSet) setFiltered(initial map[string]string) {
	keys := make([]string, 0, len(initial))
	for key := range initial {
		if p.allowed[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		p.set(key, initial[key])
	}
}

// Get returns the stored value for key.
func (p *ParamSet) Get(key string) (string, bool) {
	value, ok := p.values[key]
	return value, ok
}

// Len returns the number of stored parameters.
func (p *ParamSet) Len() int { return len(p.order) }

// Serialize renders "-m{index}=<Name>:<k1>=<v1>:..." with parameters
// in insertion order.
func (p *ParamSet) Serialize(index int) string {
	parts := make([]string, 0, len(p.order)+1)
	parts = append(parts, p.name)
	for _, key := range p.order {
		parts = append(parts, key+"="+p.values[key])
	}
	return fmt.Sprintf("-m%d=%s", index, strings.Join(parts, ":"))
}

// Clone returns an independent copy.
func (p *ParamSet) Clone() *ParamSet {
	clone := ParamSet{
		name:    p.name,
		sortKey: p.sortKey,
		allowed: p.allowed, // immutable for the set's lifetime
		order:   append([]string(nil), p.order...),
		values:  make(map[string]string, len(p.values)),
	}
	for key, value := range p.values {
		clone.values[key] = value
	}
	return &clone
}

// LZMA is the LZ-based LZMA compression method. Parameters: a (mode),
// d (dictionary size), mf (match finder), fb (fast bytes), mc (match
// finder cycles), lc/lp/pb (literal context/pos/pos bits).
type LZMA struct {
	ParamSet
}

var lzmaKeys = []string{"a", "d", "mf", "fb", "mc", "lc", "lp", "pb"}

// NewLZMA returns an empty LZMA method.
func NewLZMA() *LZMA {
	return &LZMA{newParamSet("LZMA", sortKeyMethod, lzmaKeys...)}
}

// NewLZMAFromMap returns an LZMA method initialized from the allowed
// subset of initial; unknown keys are silently dropped.
func NewLZMAFromMap(initial map[string]string) *LZMA {
	m := NewLZMA()
	m.setFiltered(initial)
	return m
}

// FastCompression sets compression mode: 0 = fast, 1 = normal.
func (m *LZMA) FastCompression(value int) *LZMA {
	m.set("a", strconv.Itoa(value))
	return m
}

// DictSize sets the dictionary size. A bare number N means 2^N bytes;
// a [b|k|m|g] suffix gives the size directly (e.g. "64m").
func (m *LZMA) DictSize(value string) *LZMA {
	m.set("d", value)
	return m
}

// MatchFinder sets the match finder (bt2, bt3, bt4, hc4).
func (m *LZMA) MatchFinder(value string) *LZMA {
	m.set("mf", value)
	return m
}

// FastBytes sets the number of fast bytes, range 5..273.
func (m *LZMA) FastBytes(value int) *LZMA {
	m.set("fb", strconv.Itoa(value))
	return m
}

// MatchFinderCycles sets the number of match finder passes.
func (m *LZMA) MatchFinderCycles(value int) *LZMA {
	m.set("mc", strconv.Itoa(value))
	return m
}

// LiteralContextBits sets lc, range 0..8.
func (m *LZMA) LiteralContextBits(value int) *LZMA {
	m.set("lc", strconv.Itoa(value))
	return m
}

// LiteralPosBits sets lp, range 0..4.
func (m *LZMA) LiteralPosBits(value int) *LZMA {
	m.set("lp", strconv.Itoa(value))
	return m
}

// PosBits sets pb, range 0..4.
func (m *LZMA) PosBits(value int) *LZMA {
	m.set("pb", strconv.Itoa(value))
	return m
}

// LZMA2 is the LZMA-based method with chunked multithreading. It takes
// all LZMA parameters plus c (chunk size).
type LZMA2 struct {
	ParamSet
}

// NewLZMA2 returns an empty LZMA2 method.
func NewLZMA2() *LZMA2 {
	keys := append(append([]string(nil), lzmaKeys...), "c")
	return &LZMA2{newParamSet("LZMA2", sortKeyMethod, keys...)}
}

// NewLZMA2FromMap returns an LZMA2 method initialized from the allowed
// subset of initial; unknown keys are silently dropped.
func NewLZMA2FromMap(initial map[string]string) *LZMA2 {
	m := NewLZMA2()
	m.setFiltered(initial)
	return m
}

// FastCompression sets compression mode: 0 = fast, 1 = normal.
func (m *LZMA2) FastCompression(value int) *LZMA2 {
	m.set("a", strconv.Itoa(value))
	return m
}

// DictSize sets the dictionary size (see [LZMA.DictSize]).
func (m *LZMA2) DictSize(value string) *LZMA2 {
	m.set("d", value)
	return m
}

// MatchFinder sets the match finder (bt2, bt3, bt4, hc4).
func (m *LZMA2) MatchFinder(value string) *LZMA2 {
	m.set("mf", value)
	return m
}

// FastBytes sets the number of fast bytes, range 5..273.
func (m *LZMA2) FastBytes(value int) *LZMA2 {
	m.set("fb", strconv.Itoa(value))
	return m
}

// MatchFinderCycles sets the number of match finder passes.
func (m *LZMA2) MatchFinderCycles(value int) *LZMA2 {
	m.set("mc", strconv.Itoa(value))
	return m
}

// LiteralContextBits sets lc, range 0..8. lc+lp cannot exceed 4 for
// LZMA2.
func (m *LZMA2) LiteralContextBits(value int) *LZMA2 {
	m.set("lc", strconv.Itoa(value))
	return m
}

// LiteralPosBits sets lp, range 0..4.
func (m *LZMA2) LiteralPosBits(value int) *LZMA2 {
	m.set("lp", strconv.Itoa(value))
	return m
}

// PosBits sets pb, range 0..4.
func (m *LZMA2) PosBits(value int) *LZMA2 {
	m.set("pb", strconv.Itoa(value))
	return m
}

// ChunkSize sets the chunk size; chunks are the unit of LZMA2
// multithreading.
func (m *LZMA2) ChunkSize(value string) *LZMA2 {
	m.set("c", value)
	return m
}

// PPMd is Dmitry Shkarin's PPMdH with small changes. It compresses
// plain text very well; compression and decompression cost the same.
type PPMd struct {
	ParamSet
}

// NewPPMd returns an empty PPMd method.
func NewPPMd() *PPMd {
	return &PPMd{newParamSet("PPMd", sortKeyMethod, "mem", "o")}
}

// NewPPMdFromMap returns a PPMd method initialized from the allowed
// subset of initial; unknown keys are silently dropped.
func NewPPMdFromMap(initial map[string]string) *PPMd {
	m := NewPPMd()
	m.setFiltered(initial)
	return m
}

// MemorySize sets the memory size used for compression.
func (m *PPMd) MemorySize(value string) *PPMd {
	m.set("mem", value)
	return m
}

// ModelOrder sets the PPM model order.
func (m *PPMd) ModelOrder(value int) *PPMd {
	m.set("o", strconv.Itoa(value))
	return m
}

// BZip2 is the BWT-based method. It takes no parameters.
type BZip2 struct {
	ParamSet
}

// NewBZip2 returns the BZip2 method.
func NewBZip2() *BZip2 {
	return &BZip2{newParamSet("BZip2", sortKeyMethod)}
}

// Deflate is the LZ+Huffman method. It takes no parameters.
type Deflate struct {
	ParamSet
}

// NewDeflate returns the Deflate method.
func NewDeflate() *Deflate {
	return &Deflate{newParamSet("Deflate", sortKeyMethod)}
}

// Copy stores without compression. It takes no parameters.
type Copy struct {
	ParamSet
}

// NewCopy returns the Copy method.
func NewCopy() *Copy {
	return &Copy{newParamSet("Copy", sortKeyMethod)}
}

// Delta is the delta filter. Its byte offset is carried in the method
// name itself ("Delta:{N}") rather than as a parameter.
type Delta struct {
	ParamSet
}

// NewDelta returns a delta filter with the default offset of 1.
func NewDelta() *Delta {
	return &Delta{newParamSet("Delta:1", sortKeyFilter)}
}

// Offset sets the delta offset in bytes. For 16-bit stereo WAV data,
// use 4.
func (f *Delta) Offset(value int) *Delta {
	f.name = fmt.Sprintf("Delta:%d", value)
	return f
}

// BCJ is the branch converter for x86 executables.
type BCJ struct {
	ParamSet
}

// NewBCJ returns the BCJ filter.
func NewBCJ() *BCJ {
	return &BCJ{newParamSet("BCJ", sortKeyFilter)}
}

// BCJ2 is the branch converter for x86 executables, version 2. It
// splits the input into four streams; d sets the dictionary size used
// for the converted-branch streams.
type BCJ2 struct {
	ParamSet
}

// NewBCJ2 returns a BCJ2 filter.
func NewBCJ2() *BCJ2 {
	return &BCJ2{newParamSet("BCJ2", sortKeyFilter, "d")}
}

// NewBCJ2FromMap returns a BCJ2 filter initialized from the allowed
// subset of initial; unknown keys are silently dropped.
func NewBCJ2FromMap(initial map[string]string) *BCJ2 {
	f := NewBCJ2()
	f.setFiltered(initial)
	return f
}

// DictSize sets the dictionary size for the converted-branch streams;
// 512 KB is enough for most inputs.
func (f *BCJ2) DictSize(value string) *BCJ2 {
	f.set("d", value)
	return f
}

// ARM is the converter for ARM (little endian) executables.
type ARM struct {
	ParamSet
}

// NewARM returns the ARM filter.
func NewARM() *ARM {
	return &ARM{newParamSet("ARM", sortKeyFilter)}
}

// ARMT is the converter for ARM Thumb (little endian) executables.
type ARMT struct {
	ParamSet
}

// NewARMT returns the ARMT filter.
func NewARMT() *ARMT {
	return &ARMT{newParamSet("ARMT", sortKeyFilter)}
}

// IA64 is the converter for IA-64 executables.
type IA64 struct {
	ParamSet
}

// NewIA64 returns the IA64 filter.
func NewIA64() *IA64 {
	return &IA64{newParamSet("IA64", sortKeyFilter)}
}

// PPC is the converter for PowerPC (big endian) executables.
type PPC struct {
	ParamSet
}

// NewPPC returns the PPC filter.
func NewPPC() *PPC {
	return &PPC{newParamSet("PPC", sortKeyFilter)}
}

// SPARC is the converter for SPARC executables.
type SPARC struct {
	ParamSet
}

// NewSPARC returns the SPARC filter.
func NewSPARC() *SPARC {
	return &SPARC{newParamSet("SPARC", sortKeyFilter)}
}
