// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package deactivation

import (
	"sync/atomic"

	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/bufferpool"
	"github.com/SunGuangdong/physgo/dispatch"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/idpool"
	"github.com/SunGuangdong/physgo/solver"
)

// Deactivator is the island detector described by spec.md §4: each
// Update call samples a fraction of the active set, traverses outward
// from those seeds looking for connected components that are entirely
// sleep-eligible, and migrates any it finds into newly numbered inactive
// sets. It holds no reference to the bodies/solver stores it operates
// on between ticks — those are supplied fresh to each Update call, the
// way Hub.Update takes the World it acts on rather than owning it.
type Deactivator struct {
	// TestedFractionPerFrame is the fraction of the active set sampled
	// as traversal seeds each tick.
	TestedFractionPerFrame float32
	// TargetDeactivatedFraction bounds, per worker thread, the fraction
	// of the active set it will accept into islands before it stops
	// taking new seeds.
	TargetDeactivatedFraction float32
	// TargetTraversedFraction bounds, per worker thread, the fraction of
	// the active set it will visit (successful or not) before it stops.
	TargetTraversedFraction float32
	// InitialIslandBodyCapacity/InitialIslandConstraintCapacity seed the
	// backing capacity of a fresh island's output slices.
	InitialIslandBodyCapacity       int
	InitialIslandConstraintCapacity int

	scheduleOffset int
	setIDs         *idpool.Pool
}

// New returns a Deactivator with the tunables spec.md §4.1 suggests as
// reasonable defaults for a moderately sized simulation.
func New() *Deactivator {
	return &Deactivator{
		TestedFractionPerFrame:          0.01,
		TargetDeactivatedFraction:       0.005,
		TargetTraversedFraction:         0.02,
		InitialIslandBodyCapacity:       1024,
		InitialIslandConstraintCapacity: 1024,
		setIDs:                          idpool.New(1), // 0 is reserved for the active set
	}
}

// Clear resets scheduling state as if the Deactivator were newly
// constructed, without touching TestedFractionPerFrame and friends.
// Set ids restart at 1, so ids issued before the call are issued again;
// callers use this after wiping the bodies/solver stores (e.g. a level
// reload), when no set from before the wipe is still in use.
func (d *Deactivator) Clear() {
	d.scheduleOffset = 0
	d.setIDs.Clear(1)
}

// Update runs one tick of sampling, parallel traversal, dedup, and
// parallel gather, per spec.md §4.1-§4.4, and reports what it did.
func (d *Deactivator) Update(dispatcher *dispatch.Dispatcher, bodiesStore bodies.Bodies, solverStore solver.Solver, deterministic bool) TickReport {
	active := bodiesStore.ActiveSet()
	seeds := d.selectTargets(active, deterministic)
	if len(seeds) == 0 {
		return TickReport{}
	}

	threadCount := dispatcher.ThreadCount()
	workers := make([]*WorkerResult, threadCount)
	for i := range workers {
		workers[i] = newWorkerResult(active.Count())
	}

	traversedQuota := threadQuota(active.Count(), d.TargetTraversedFraction, threadCount)
	deactivatedQuota := threadQuota(active.Count(), d.TargetDeactivatedFraction, threadCount)

	var nextSeed int64
	var attempted int64

	dispatcher.DispatchWorkers(func(workerIndex int) {
		worker := workers[workerIndex]
		pool := dispatcher.GetThreadMemoryPool(workerIndex)
		bodiesAccepted := 0

		for worker.TraversedBodies.Count() < traversedQuota && bodiesAccepted < deactivatedQuota {
			i := atomic.AddInt64(&nextSeed, 1) - 1
			if i >= int64(len(seeds)) {
				return
			}
			seed := seeds[i]
			if worker.TraversedBodies.Contains(int(seed)) {
				continue
			}

			atomic.AddInt64(&attempted, 1)
			island, ok := collectIsland(seed, candidatePredicate, worker, active, solverStore, pool,
				d.InitialIslandBodyCapacity, d.InitialIslandConstraintCapacity)
			if ok {
				worker.Islands = append(worker.Islands, island)
				bodiesAccepted += len(island.BodyIndices)
			}
		}
	})

	return d.finishTick(workers, active.Count(), len(seeds), int(attempted), bodiesStore, solverStore, dispatcher)
}

// ForceDeactivate immediately and unconditionally migrates seeds' whole
// connected components into inactive sets, bypassing
// Activity.DeactivationCandidate entirely. This has no counterpart in
// the distilled spec's tick loop; it exists for callers that know out of
// band that a set of bodies should sleep right now (e.g. a "pause this
// subtree" debug command), per SPEC_FULL.md's supplemented features.
// Its traversal runs single-threaded, so the islands found do not depend
// on thread count; the gather phase is still dispatched across
// dispatcher's workers, as in Update.
func (d *Deactivator) ForceDeactivate(bodiesStore bodies.Bodies, solverStore solver.Solver, dispatcher *dispatch.Dispatcher, seeds []handles.BodyIndex) TickReport {
	active := bodiesStore.ActiveSet()
	worker := newWorkerResult(active.Count())
	pool := bufferpool.New(d.InitialIslandBodyCapacity, d.InitialIslandConstraintCapacity)

	attempted := 0
	for _, seed := range seeds {
		if worker.TraversedBodies.Contains(int(seed)) {
			continue
		}
		attempted++
		island, ok := collectIsland(seed, unconditionalPredicate, worker, active, solverStore, pool,
			d.InitialIslandBodyCapacity, d.InitialIslandConstraintCapacity)
		if ok {
			worker.Islands = append(worker.Islands, island)
		}
	}

	return d.finishTick([]*WorkerResult{worker}, active.Count(), len(seeds), attempted, bodiesStore, solverStore, dispatcher)
}

// finishTick runs the single-threaded dedup phase followed by the
// parallel gather phase, common to both a normal Update tick and a
// ForceDeactivate call.
func (d *Deactivator) finishTick(
	workers []*WorkerResult,
	activeCount, seedsEmitted, attempted int,
	bodiesStore bodies.Bodies,
	solverStore solver.Solver,
	dispatcher *dispatch.Dispatcher,
) TickReport {
	accepted, duplicates := dedupe(workers, activeCount, d.setIDs)

	active := bodiesStore.ActiveSet()
	deactivated := gather(accepted, active, bodiesStore, solverStore, dispatcher)

	report := TickReport{
		SeedsEmitted:        seedsEmitted,
		TraversalsAttempted: attempted,
		DuplicateIslands:    duplicates,
		BodiesDeactivated:   deactivated,
		AcceptedIslands:     make([]AcceptedIsland, len(accepted)),
	}
	for _, w := range workers {
		report.BodiesTraversed += w.TraversedBodies.Count()
		report.IslandsFound += len(w.Islands)
	}
	for i, a := range accepted {
		report.AcceptedIslands[i] = AcceptedIsland{
			SetID:               a.setID,
			OriginalBodyIndices: a.island.BodyIndices,
		}
	}
	return report
}
