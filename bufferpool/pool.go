// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bufferpool provides typed slab allocation on top of
// sync.Pool, the way jsoniter.go's sortedContactsPool recycles a
// []*IDContact across encode calls. A deactivator worker and the
// orchestrator must never share a pool — sync.Pool itself is safe for
// concurrent Get/Put, but the buffers it hands out are not: two workers
// racing to grow the same returned []uint64 would corrupt each other's
// IndexSet. §5 of the design requires one Pool per worker plus one for
// the orchestrator.
package bufferpool

import "sync"

// Pool hands out word slices (for bitset.IndexSet) and handle/index
// slices (for island and job lists) sized to a hinted capacity, reusing
// previously released backing arrays where possible.
type Pool struct {
	words sync.Pool
	ints  sync.Pool
}

// New creates an empty Pool. wordCap and intCap seed the capacity of
// freshly minted buffers; existing pooled buffers are returned
// regardless of their capacity.
func New(wordCap, intCap int) *Pool {
	p := &Pool{}
	p.words.New = func() interface{} {
		s := make([]uint64, 0, wordCap)
		return &s
	}
	p.ints.New = func() interface{} {
		s := make([]int, 0, intCap)
		return &s
	}
	return p
}

// TakeWords returns a []uint64 of length n, reusing a pooled backing
// array when it has enough capacity.
func (p *Pool) TakeWords(n int) []uint64 {
	ptr := p.words.Get().(*[]uint64)
	buf := (*ptr)[:0]
	if cap(buf) < n {
		buf = make([]uint64, n)
	} else {
		buf = buf[:n]
		for i := range buf {
			buf[i] = 0
		}
	}
	return buf
}

// ReturnWords gives a []uint64 back to the pool for reuse.
func (p *Pool) ReturnWords(buf []uint64) {
	buf = buf[:0]
	p.words.Put(&buf)
}

// TakeInts returns a []int with length 0 and at least the requested
// capacity, reusing a pooled backing array when possible.
func (p *Pool) TakeInts(capacityHint int) []int {
	ptr := p.ints.Get().(*[]int)
	buf := (*ptr)[:0]
	if cap(buf) < capacityHint {
		buf = make([]int, 0, capacityHint)
	}
	return buf
}

// ReturnInts gives a []int back to the pool for reuse.
func (p *Pool) ReturnInts(buf []int) {
	buf = buf[:0]
	p.ints.Put(&buf)
}
