// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package deactivation

import (
	"sync/atomic"

	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/dispatch"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/solver"
)

// gatherJob is one unit of the gather phase's parallel dispatch: either a
// contiguous range of bodies to copy out of the active set, or a
// contiguous range of one type batch's constraints to gather through its
// TypeProcessor. Splitting both kinds into same-shaped ranges lets a
// single atomic counter hand them all out to the worker pool together,
// the way the traversal phase's seeds are handed out.
type gatherJob struct {
	runBody       func()
	runConstraint func()
}

func (j gatherJob) run() {
	if j.runBody != nil {
		j.runBody()
		return
	}
	j.runConstraint()
}

// partitionRange splits [0, n) into max(1, n/32) contiguous chunks, the
// first n%parts of which absorb one extra element. Mirrors the
// traversal/gather granularity spec.md §4.4 calls for: enough chunks
// that imbalance between workers stays small, few enough that atomic
// contention on the job counter doesn't dominate.
func partitionRange(n int) [][2]int {
	if n == 0 {
		return nil
	}
	parts := n / 32
	if parts < 1 {
		parts = 1
	}
	base := n / parts
	remainder := n % parts

	ranges := make([][2]int, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < remainder {
			size++
		}
		if size == 0 {
			continue
		}
		ranges = append(ranges, [2]int{start, start + size})
		start += size
	}
	return ranges
}

// gather copies every accepted island's bodies and constraints out of the
// active set into a freshly installed inactive set and returns the total
// number of bodies deactivated. It does not touch the active set itself —
// active is read-only throughout, and removal is left to the caller, which
// has TickReport.AcceptedIslands[].OriginalBodyIndices to compact with once
// Update/ForceDeactivate returns. Set/slot installation runs single-threaded
// before/after the parallel copy, since it touches shared, non-disjoint
// state (the handle->location map); the copy work in between is
// embarrassingly parallel over disjoint destination ranges and is where the
// dispatcher earns its keep.
func gather(
	accepted []acceptedIsland,
	active *bodies.BodySet,
	bodiesStore bodies.Bodies,
	solverStore solver.Solver,
	dispatcher *dispatch.Dispatcher,
) int {
	if len(accepted) == 0 {
		return 0
	}

	highestSetID := 0
	for _, a := range accepted {
		if int(a.setID) > highestSetID {
			highestSetID = int(a.setID)
		}
	}
	bodiesStore.EnsureSetsCapacity(highestSetID)
	solverStore.EnsureSetsCapacity(highestSetID)

	newBodySets := make([]*bodies.BodySet, len(accepted))
	newConstraintSets := make([]*solver.ConstraintSet, len(accepted))

	var jobs []gatherJob

	for ai, a := range accepted {
		n := len(a.island.BodyIndices)
		dest := bodies.NewBodySet(n)
		newBodySets[ai] = dest

		srcIndices := a.island.BodyIndices
		for _, r := range partitionRange(n) {
			start, end := r[0], r[1]
			jobs = append(jobs, gatherJob{runBody: func() {
				copyBodies(active, dest, srcIndices, start, end)
			}})
		}

		batches := make([]solver.Batch, len(a.island.ProtoBatches))
		for bi, proto := range a.island.ProtoBatches {
			typeBatches := make([]solver.TypeBatch, len(proto.TypeBatches))
			for ti, tb := range proto.TypeBatches {
				target := &typeBatches[ti]
				target.TypeID = tb.TypeID
				target.Handles = make([]handles.ConstraintHandle, len(tb.ConstraintHandles))

				processor := solverStore.TypeProcessor(tb.TypeID)
				sourceHandles := tb.ConstraintHandles
				for _, r := range partitionRange(len(sourceHandles)) {
					start, end := r[0], r[1]
					jobs = append(jobs, gatherJob{runConstraint: func() {
						processor.GatherActiveConstraints(active, sourceHandles, start, end, target)
					}})
				}
			}
			batches[bi] = solver.Batch{TypeBatches: typeBatches}
		}
		newConstraintSets[ai] = &solver.ConstraintSet{Batches: batches}
	}

	dispatchJobs(dispatcher, jobs)

	deactivated := 0
	for ai, a := range accepted {
		bodiesStore.SetSlot(a.setID, newBodySets[ai])
		solverStore.SetSlot(a.setID, newConstraintSets[ai])

		for i, h := range newBodySets[ai].IndexToHandle {
			bodiesStore.RecordLocation(h, bodies.Location{Set: a.setID, Index: handles.BodyIndex(i)})
		}
		deactivated += len(a.island.BodyIndices)
	}

	return deactivated
}

// copyBodies writes dest[start:end] from active at the original indices
// named by src[start:end]. dest was pre-sized to len(src) by the caller,
// so disjoint [start,end) ranges across jobs never touch the same
// element — the same discipline solver.genericProcessor's gather relies
// on.
func copyBodies(active, dest *bodies.BodySet, src []handles.BodyIndex, start, end int) {
	for i := start; i < end; i++ {
		origin := src[i]
		dest.IndexToHandle[i] = active.IndexToHandle[origin]
		dest.Activity[i] = active.Activity[origin]
		dest.Collidables[i] = active.Collidables[origin]
		dest.Constraints[i] = active.Constraints[origin]
		dest.LocalInertias[i] = active.LocalInertias[origin]
		dest.Poses[i] = active.Poses[origin]
		dest.Velocities[i] = active.Velocities[origin]
	}
}

// dispatchJobs hands jobs out to the dispatcher's worker pool via an
// atomic fetch-add counter, the same work-stealing shape the traversal
// phase uses for seeds.
func dispatchJobs(dispatcher *dispatch.Dispatcher, jobs []gatherJob) {
	if len(jobs) == 0 {
		return
	}
	var next int64
	dispatcher.DispatchWorkers(func(workerIndex int) {
		for {
			i := atomic.AddInt64(&next, 1) - 1
			if i >= int64(len(jobs)) {
				return
			}
			jobs[i].run()
		}
	})
}
