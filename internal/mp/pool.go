// This file provides scratch-buffer pooling for the column multipliers.

package mp

import (
	"math/bits"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Digit Slice Pools
// ─────────────────────────────────────────────────────────────────────────────

// digitSlicePools pools []Digit scratch buffers by size class.
// Sizes are powers of 4 times 2: 32, 128, 512, 2048 digits.
var digitSlicePools = [...]sync.Pool{
	{New: func() any { return make([]Digit, 32) }},
	{New: func() any { return make([]Digit, 128) }},
	{New: func() any { return make([]Digit, 512) }},
	{New: func() any { return make([]Digit, 2048) }},
}

var digitSliceSizes = [...]int{32, 128, 512, 2048}

// digitSlicePoolIndex returns the pool index for size, or -1 when the
// request is too large to pool.
func digitSlicePoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > digitSliceSizes[len(digitSliceSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 4) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// acquireDigits returns a zeroed slice of exactly size digits. Release it
// with releaseDigits once done:
//
//	w := acquireDigits(n)
//	defer releaseDigits(w)
func acquireDigits(size int) []Digit {
	idx := digitSlicePoolIndex(size)
	if idx < 0 {
		return make([]Digit, size)
	}
	s := digitSlicePools[idx].Get().([]Digit)
	clear(s)
	return s[:size]
}

// releaseDigits hands s back to its pool. Slices that did not come from a
// pool are left to the GC. Safe to call with nil.
func releaseDigits(s []Digit) {
	if s == nil {
		return
	}
	c := cap(s)
	idx := digitSlicePoolIndex(c)
	if idx >= 0 && digitSliceSizes[idx] == c {
		digitSlicePools[idx].Put(s[:c])
	}
}
