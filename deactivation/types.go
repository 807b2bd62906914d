// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deactivation implements the Deactivator: the island
// detector that periodically walks the active constraint graph and
// migrates fully sleep-eligible connected components into freshly
// numbered inactive sets. See spec.md §4.1-§4.4.
package deactivation

import (
	"github.com/SunGuangdong/physgo/bitset"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/solver"
)

// Island is one candidate connected component produced by a single
// traversal: the bodies visited, in DFS order, and the constraint
// handles encountered, grouped into proto-batches.
type Island struct {
	BodyIndices  []handles.BodyIndex
	ProtoBatches []solver.ProtoBatch
}

// WorkerResult accumulates one worker's state across every traversal it
// runs in a tick: the union of every body visited (whether or not the
// containing traversal succeeded) and the islands that did succeed.
type WorkerResult struct {
	TraversedBodies *bitset.IndexSet
	Islands         []Island
}

func newWorkerResult(activeCount int) *WorkerResult {
	return &WorkerResult{TraversedBodies: bitset.New(activeCount)}
}

// AcceptedIsland is a deduplicated island that survived gather: the
// fresh inactive set id it was copied into, and its original active-set
// body indices so the caller can remove them from the active set.
type AcceptedIsland struct {
	SetID               handles.SetID        `json:"setID"`
	OriginalBodyIndices []handles.BodyIndex `json:"originalBodyIndices"`
}

// TickReport summarizes one call to Update, the statistics a real engine
// needs to tune TestedFractionPerFrame/TargetTraversedFraction/
// TargetDeactivatedFraction (spec.md §4.1). Not part of the original
// distillation's interface — see SPEC_FULL.md "Tick statistics".
type TickReport struct {
	SeedsEmitted        int              `json:"seedsEmitted"`
	TraversalsAttempted int              `json:"traversalsAttempted"`
	BodiesTraversed     int              `json:"bodiesTraversed"`
	IslandsFound        int              `json:"islandsFound"`
	DuplicateIslands    int              `json:"duplicateIslands"`
	BodiesDeactivated   int              `json:"bodiesDeactivated"`
	AcceptedIslands     []AcceptedIsland `json:"acceptedIslands"`
}
