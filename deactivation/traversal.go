// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package deactivation

import (
	"github.com/SunGuangdong/physgo/bitset"
	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/bufferpool"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/solver"
)

// predicate is the deactivation predicate of spec.md §4.2: it records
// idx into the worker's cumulative TraversedBodies *before* deciding
// whether the body may be visited, so a non-candidate body still blocks
// other seeds on the same worker from retrying its component. Two
// variants exist per the design note in spec.md §9: candidatePredicate
// for normal ticks, unconditionalPredicate for forced deactivation.
type predicate func(worker *WorkerResult, active *bodies.BodySet, idx handles.BodyIndex) bool

func candidatePredicate(worker *WorkerResult, active *bodies.BodySet, idx handles.BodyIndex) bool {
	if !worker.TraversedBodies.Add(int(idx)) {
		return false
	}
	return active.Activity[idx].DeactivationCandidate
}

func unconditionalPredicate(worker *WorkerResult, active *bodies.BodySet, idx handles.BodyIndex) bool {
	worker.TraversedBodies.Add(int(idx))
	return true
}

// collectIsland runs one depth-first traversal seeded from seed,
// implementing spec.md §4.2. It returns the island and true on success,
// or a zero Island and false if the predicate rejected any visited body.
// consideredBodies/consideredConstraints are scoped to this single
// traversal and come from the calling worker's thread-local pool, per
// the buffer pool discipline in spec.md §5/§9.
func collectIsland(
	seed handles.BodyIndex,
	pred predicate,
	worker *WorkerResult,
	active *bodies.BodySet,
	s solver.Solver,
	pool *bufferpool.Pool,
	bodyCapacityHint, constraintCapacityHint int,
) (Island, bool) {
	if !pred(worker, active, seed) {
		return Island{}, false
	}

	consideredBodies := bitset.FromPool(active.Count(), pool.TakeWords)
	defer consideredBodies.Dispose(pool.ReturnWords)

	highestConstraintID := s.HighestPossiblyClaimedConstraintID()
	consideredConstraints := bitset.FromPool(highestConstraintID+1, pool.TakeWords)
	defer consideredConstraints.Dispose(pool.ReturnWords)

	outputBodies := make([]handles.BodyIndex, 0, bodyCapacityHint)
	outputConstraints := make([]handles.ConstraintHandle, 0, constraintCapacityHint)
	stack := pool.TakeInts(bodyCapacityHint)
	defer pool.ReturnInts(stack)

	outputBodies = append(outputBodies, seed)
	consideredBodies.AddUnsafely(int(seed))
	stack = append(stack, int(seed))

	aborted := false

	for len(stack) > 0 && !aborted {
		b := handles.BodyIndex(stack[len(stack)-1])
		stack = stack[:len(stack)-1]

		for _, ref := range active.Constraints[b] {
			c := ref.ConnectingConstraintHandle
			if consideredConstraints.Contains(int(c)) {
				continue
			}
			outputConstraints = append(outputConstraints, c)
			consideredConstraints.AddUnsafely(int(c))

			s.EnumerateConnectedBodies(c, func(other handles.BodyIndex) {
				if aborted || other == b || consideredBodies.Contains(int(other)) {
					return
				}
				if !pred(worker, active, other) {
					aborted = true
					return
				}
				consideredBodies.AddUnsafely(int(other))
				outputBodies = append(outputBodies, other)
				stack = append(stack, int(other))
			})

			if aborted {
				break
			}
		}
	}

	if aborted {
		return Island{}, false
	}

	return Island{
		BodyIndices:  outputBodies,
		ProtoBatches: []solver.ProtoBatch{s.BuildProtoBatch(outputConstraints)},
	}, true
}
