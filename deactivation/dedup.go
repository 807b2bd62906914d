// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package deactivation

import (
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/idpool"
)

// acceptedIsland pairs a freshly allocated set id with the full island it
// was allocated for; AcceptedIsland (types.go) is the trimmed, public
// version handed back in a TickReport.
type acceptedIsland struct {
	setID  handles.SetID
	island Island
}

// dedupe resolves islands discovered more than once by different
// workers in the same tick. Workers are walked in ascending index; for
// each island I found by worker w, its identity body I.BodyIndices[0] is
// tested against every earlier worker w' < w's cumulative
// TraversedBodies. If any earlier worker already visited the identity
// body — whether or not that visit produced an accepted island of its
// own — I is a duplicate and is dropped; the earlier worker's claim
// always wins.
//
// Testing only the identity body is sufficient: a body belongs to at
// most one connected component, so two islands discovered from the same
// component necessarily share every body, including the first. This
// reading resolves an indexing ambiguity in the distillation this was
// ported from, where the duplicate check was written against
// "the worker at workerIndex" instead of a worker strictly before it —
// see DESIGN.md, Open Question 1.
//
// dedupe allocates a fresh handles.SetID per accepted island from pool,
// which is why it must run single-threaded: idpool.Pool is not safe for
// concurrent Take.
func dedupe(workers []*WorkerResult, activeCount int, pool *idpool.Pool) ([]acceptedIsland, int) {
	var accepted []acceptedIsland
	duplicates := 0

	for w, worker := range workers {
		for _, island := range worker.Islands {
			identity := island.BodyIndices[0]
			if claimedByEarlierWorker(workers[:w], identity) {
				duplicates++
				continue
			}
			accepted = append(accepted, acceptedIsland{
				setID:  handles.SetID(pool.Take()),
				island: island,
			})
		}
	}

	return accepted, duplicates
}

func claimedByEarlierWorker(earlier []*WorkerResult, identity handles.BodyIndex) bool {
	for _, w := range earlier {
		if w.TraversedBodies.Contains(int(identity)) {
			return true
		}
	}
	return false
}
