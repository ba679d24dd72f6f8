// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package bitmap implements a fixed-size, bit-indexed set over node indices.
//
// Bitmaps are sized at allocation and never resized: the control flow that
// calls New always knows the node count up front (node_record_count in the
// configuration loader), and a bitmap that outlives a node-count change is
// rebuilt from scratch rather than grown in place.
package bitmap

import (
	"encoding/json"
	"math/bits"
)

const wordBits = 64

// Bitmap is a dense, word-packed bit-indexed set.
type Bitmap struct {
	words []uint64
	size  int
}

// New allocates a bitmap sized exactly for size bits, all initially clear.
func New(size int) *Bitmap {
	if size < 0 {
		size = 0
	}
	return &Bitmap{
		words: make([]uint64, (size+wordBits-1)/wordBits),
		size:  size,
	}
}

// Size returns the fixed bit width the bitmap was allocated with.
func (b *Bitmap) Size() int {
	return b.size
}

// Set sets bit i. Panics if i is out of range, matching the fixed-size
// contract: a caller setting a bit beyond the allocation has a bug, not a
// runtime condition to recover from.
func (b *Bitmap) Set(i int) {
	b.checkRange(i)
	b.words[i/wordBits] |= 1 << uint(i%wordBits)
}

// Clear clears bit i.
func (b *Bitmap) Clear(i int) {
	b.checkRange(i)
	b.words[i/wordBits] &^= 1 << uint(i%wordBits)
}

// Test returns whether bit i is set.
func (b *Bitmap) Test(i int) bool {
	b.checkRange(i)
	return b.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// PopCount returns the number of set bits.
func (b *Bitmap) PopCount() int {
	count := 0
	for _, w := range b.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// FindFirstSet returns the index of the lowest set bit, or -1 if none is set.
func (b *Bitmap) FindFirstSet() int {
	for wi, w := range b.words {
		if w == 0 {
			continue
		}
		return wi*wordBits + bits.TrailingZeros64(w)
	}
	return -1
}

// ForEachSet calls fn with every set bit's index, in ascending order.
func (b *Bitmap) ForEachSet(fn func(i int)) {
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(wi*wordBits + tz)
			w &^= 1 << uint(tz)
		}
	}
}

// Clone returns an independent copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{
		words: make([]uint64, len(b.words)),
		size:  b.size,
	}
	copy(c.words, b.words)
	return c
}

// bitmapJSON is the wire shape for a Bitmap: its fixed width plus the set
// indices, rather than the packed words, since consumers (pkg/statusserver)
// care about membership, not storage layout.
type bitmapJSON struct {
	Size int   `json:"size"`
	Set  []int `json:"set"`
}

// MarshalJSON encodes the bitmap's width and set indices.
func (b *Bitmap) MarshalJSON() ([]byte, error) {
	set := make([]int, 0, b.PopCount())
	b.ForEachSet(func(i int) { set = append(set, i) })
	return json.Marshal(bitmapJSON{Size: b.size, Set: set})
}

func (b *Bitmap) checkRange(i int) {
	if i < 0 || i >= b.size {
		panic("bitmap: index out of range")
	}
}
