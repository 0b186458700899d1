// Copyright 2026 The Semper Authors
// SPDX-License-Identifier: Apache-2.0

package sevenzip

// Chain is an ordered, append-only sequence of compression methods and
// filters. Insertion order is significant: earlier entries apply
// first, and each entry serializes with its 0-based position.
type Chain struct {
	items []Method
}

// Append adds methods to the end of the chain. There is no removal or
// reordering; build a new chain instead.
func (c *Chain) Append(methods ...Method) {
	c.items = append(c.items, methods...)
}

// Len returns the number of chain entries.
func (c *Chain) Len() int { return len(c.items) }

// Serialize renders every entry in insertion order with its position
// index, e.g. ["-m0=BCJ2:d=64m", "-m1=LZMA2:d=29"].
func (c *Chain) Serialize() []string {
	args := make([]string, 0, len(c.items))
	for index, method := range c.items {
		args = append(args, method.Serialize(index))
	}
	return args
}

// Clone returns an independent copy of the chain. Entries are copied
// down to their parameter sets, so mutating a clone's entries never
// affects the original.
func (c *Chain) Clone() Chain {
	if len(c.items) == 0 {
		return Chain{}
	}
	items := make([]Method, len(c.items))
	for i, method := range c.items {
		items[i] = method.Clone()
	}
	return Chain{items: items}
}
