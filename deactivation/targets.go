// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package deactivation

import (
	"sort"

	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/handles"
)

// selectTargets implements spec.md §4.1's target selection. It mutates
// d.scheduleOffset as a side effect, the way the real engine's offset
// persists across ticks to guarantee schedule fairness.
func (d *Deactivator) selectTargets(active *bodies.BodySet, deterministic bool) []handles.BodyIndex {
	activeCount := active.Count()
	if activeCount == 0 {
		return nil
	}

	candidateCount := int(float32(activeCount) * d.TestedFractionPerFrame)
	if candidateCount < 1 {
		candidateCount = 1
	}
	spacing := float32(activeCount) / float32(candidateCount)

	var permutation []handles.BodyIndex
	if deterministic {
		permutation = handlePermutation(active)
	}

	start := float32(d.scheduleOffset % activeCount)
	seeds := make([]handles.BodyIndex, candidateCount)
	for i := 0; i < candidateCount; i++ {
		idx := int(start + float32(i)*spacing)
		// spec.md §9 notes the original compares with a strict `>`
		// here, which lets one candidate land exactly at ActiveCount
		// and read out of bounds. Here the comparison is `>=`, so an
		// index at or past activeCount wraps back into range by
		// subtracting activeCount.
		if idx >= activeCount {
			idx -= activeCount
		}
		if permutation != nil {
			seeds[i] = permutation[idx]
		} else {
			seeds[i] = handles.BodyIndex(idx)
		}
	}

	d.scheduleOffset++
	if d.scheduleOffset > activeCount {
		d.scheduleOffset = 0
	}

	return seeds
}

// handlePermutation sorts body indices ascending by handle, making the
// seed set (after remapping through it) a function of handle identity
// rather than memory layout.
func handlePermutation(active *bodies.BodySet) []handles.BodyIndex {
	n := active.Count()
	perm := make([]handles.BodyIndex, n)
	for i := range perm {
		perm[i] = handles.BodyIndex(i)
	}
	sort.Slice(perm, func(i, j int) bool {
		return active.IndexToHandle[perm[i]] < active.IndexToHandle[perm[j]]
	})
	return perm
}

// threadQuota computes max(1, activeCount*fraction/threadCount), the
// shape spec.md §4.1 gives for both the traversed and deactivated
// per-thread quotas.
func threadQuota(activeCount int, fraction float32, threadCount int) int {
	q := int(float32(activeCount) * fraction / float32(threadCount))
	if q < 1 {
		q = 1
	}
	return q
}
