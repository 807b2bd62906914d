// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package deactivation

import (
	"testing"

	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/bufferpool"
	"github.com/SunGuangdong/physgo/dispatch"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/idpool"
	"github.com/SunGuangdong/physgo/solver"
)

// chain builds n bodies wired into a single connected chain
// (0-1-2-...-n-1) via distance constraints, each body's
// DeactivationCandidate set to candidate, and returns the stores plus the
// handle of each body.
func chain(n int, candidate bool) (*bodies.InMemory, *solver.InMemory, []handles.BodyHandle) {
	active := bodies.NewBodySet(n)
	bodyHandles := make([]handles.BodyHandle, n)
	for i := 0; i < n; i++ {
		h := handles.BodyHandle(i + 1)
		bodyHandles[i] = h
		active.IndexToHandle[i] = h
		active.Activity[i] = bodies.Activity{DeactivationCandidate: candidate}
	}
	b := bodies.NewInMemory(active)
	s := solver.NewInMemory(b)

	const distanceType solver.TypeID = 1
	for i := 0; i < n-1; i++ {
		c := s.AddConstraint(distanceType, bodyHandles[i], bodyHandles[i+1])
		active.Constraints[i] = append(active.Constraints[i], bodies.ConstraintReference{ConnectingConstraintHandle: c, IndexInConstraint: 0})
		active.Constraints[i+1] = append(active.Constraints[i+1], bodies.ConstraintReference{ConnectingConstraintHandle: c, IndexInConstraint: 1})
	}
	return b, s, bodyHandles
}

// square builds 4 bodies wired into a single cycle via distance
// constraints c0=(0,1), c1=(1,2), c2=(2,3), c3=(3,0), each body's
// DeactivationCandidate set to candidate.
func square(candidate bool) (*bodies.InMemory, *solver.InMemory, []handles.BodyHandle) {
	active := bodies.NewBodySet(4)
	bodyHandles := make([]handles.BodyHandle, 4)
	for i := 0; i < 4; i++ {
		h := handles.BodyHandle(i + 1)
		bodyHandles[i] = h
		active.IndexToHandle[i] = h
		active.Activity[i] = bodies.Activity{DeactivationCandidate: candidate}
	}
	b := bodies.NewInMemory(active)
	s := solver.NewInMemory(b)

	const distanceType solver.TypeID = 1
	edges := [4][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	for _, e := range edges {
		src, dst := e[0], e[1]
		c := s.AddConstraint(distanceType, bodyHandles[src], bodyHandles[dst])
		active.Constraints[src] = append(active.Constraints[src], bodies.ConstraintReference{ConnectingConstraintHandle: c, IndexInConstraint: 0})
		active.Constraints[dst] = append(active.Constraints[dst], bodies.ConstraintReference{ConnectingConstraintHandle: c, IndexInConstraint: 1})
	}
	return b, s, bodyHandles
}

func TestUpdateDeactivatesFullyAsleepChain(t *testing.T) {
	b, s, handlesList := chain(8, true)
	d := New()
	d.TestedFractionPerFrame = 1.0
	d.TargetDeactivatedFraction = 1.0
	d.TargetTraversedFraction = 1.0
	disp := dispatch.New(1, 64, 64)

	report := d.Update(disp, b, s, true)

	if report.BodiesDeactivated != 8 {
		t.Fatalf("expected all 8 bodies deactivated, got %d", report.BodiesDeactivated)
	}
	if b.ActiveSet().Count() != 8 {
		t.Fatalf("expected active set untouched by the core, got %d", b.ActiveSet().Count())
	}
	if len(report.AcceptedIslands) != 1 {
		t.Fatalf("expected one island, got %d", len(report.AcceptedIslands))
	}

	setID := report.AcceptedIslands[0].SetID
	set := b.Set(setID)
	if set == nil || set.Count() != 8 {
		t.Fatalf("expected inactive set with 8 bodies, got %+v", set)
	}

	for _, h := range handlesList {
		loc, ok := b.HandleToLocation(h)
		if !ok || loc.Set != setID {
			t.Fatalf("handle %v not relocated to set %v: %+v", h, setID, loc)
		}
	}

	b.RemoveFromActive(report.AcceptedIslands[0].OriginalBodyIndices)
	if b.ActiveSet().Count() != 0 {
		t.Fatalf("expected active set empty after caller removal, got %d", b.ActiveSet().Count())
	}
}

func TestUpdateLeavesAwakeChainInPlace(t *testing.T) {
	b, s, _ := chain(5, false)
	d := New()
	d.TestedFractionPerFrame = 1.0
	disp := dispatch.New(1, 64, 64)

	report := d.Update(disp, b, s, true)

	if report.BodiesDeactivated != 0 {
		t.Fatalf("expected nothing deactivated, got %d", report.BodiesDeactivated)
	}
	if b.ActiveSet().Count() != 5 {
		t.Fatalf("expected active set untouched, got %d", b.ActiveSet().Count())
	}
}

func TestUpdateMixedChainKeepsAwakeBodiesActive(t *testing.T) {
	b, s, handlesList := chain(6, true)
	// Body 3 (index 3) stays awake, splitting the chain's sleep
	// eligibility: neither half can form a fully-candidate island since
	// both sides share a constraint through the awake body.
	b.ActiveSet().Activity[3] = bodies.Activity{DeactivationCandidate: false}

	d := New()
	d.TestedFractionPerFrame = 1.0
	d.TargetDeactivatedFraction = 1.0
	d.TargetTraversedFraction = 1.0
	disp := dispatch.New(1, 64, 64)

	report := d.Update(disp, b, s, true)

	if report.BodiesDeactivated != 0 {
		t.Fatalf("expected no deactivation with an awake body in the only component, got %d", report.BodiesDeactivated)
	}
	if b.ActiveSet().Count() != 6 {
		t.Fatalf("expected all 6 bodies still active, got %d", b.ActiveSet().Count())
	}
	_ = handlesList
}

func TestUpdateTwoDisjointIslandsBothDeactivate(t *testing.T) {
	b, s, _ := chain(4, true)
	active := b.ActiveSet()

	// Append a second, disjoint chain of 4 candidate bodies with no
	// constraints linking it to the first.
	secondHandles := make([]handles.BodyHandle, 4)
	for i := 0; i < 4; i++ {
		h := handles.BodyHandle(100 + i)
		secondHandles[i] = h
		active.IndexToHandle = append(active.IndexToHandle, h)
		active.Activity = append(active.Activity, bodies.Activity{DeactivationCandidate: true})
		active.Collidables = append(active.Collidables, bodies.Collidable{})
		active.Constraints = append(active.Constraints, nil)
		active.LocalInertias = append(active.LocalInertias, bodies.Inertia{})
		active.Poses = append(active.Poses, bodies.Pose{})
		active.Velocities = append(active.Velocities, bodies.Velocity{})
	}
	for i := 0; i < 3; i++ {
		src, dst := 4+i, 4+i+1
		c := s.AddConstraint(1, secondHandles[i], secondHandles[i+1])
		active.Constraints[src] = append(active.Constraints[src], bodies.ConstraintReference{ConnectingConstraintHandle: c, IndexInConstraint: 0})
		active.Constraints[dst] = append(active.Constraints[dst], bodies.ConstraintReference{ConnectingConstraintHandle: c, IndexInConstraint: 1})
	}
	// location map was populated by NewInMemory before these bodies
	// existed; re-derive it the same way it would be after a body spawn.
	for i, h := range secondHandles {
		b.RecordLocation(h, bodies.Location{Set: handles.ActiveSetID, Index: handles.BodyIndex(4 + i)})
	}

	d := New()
	d.TestedFractionPerFrame = 1.0
	d.TargetDeactivatedFraction = 1.0
	d.TargetTraversedFraction = 1.0
	disp := dispatch.New(1, 64, 64)

	report := d.Update(disp, b, s, true)

	if report.BodiesDeactivated != 8 {
		t.Fatalf("expected both islands (8 bodies total) deactivated, got %d", report.BodiesDeactivated)
	}
	if len(report.AcceptedIslands) != 2 {
		t.Fatalf("expected 2 accepted islands, got %d", len(report.AcceptedIslands))
	}
	if b.ActiveSet().Count() != 8 {
		t.Fatalf("expected active set untouched by the core, got %d", b.ActiveSet().Count())
	}

	var removed []handles.BodyIndex
	for _, island := range report.AcceptedIslands {
		removed = append(removed, island.OriginalBodyIndices...)
	}
	b.RemoveFromActive(removed)
	if b.ActiveSet().Count() != 0 {
		t.Fatalf("expected active set drained after caller removal, got %d", b.ActiveSet().Count())
	}
}

// TestUpdateAcceptsCyclicIslandSquare covers a fully candidate cycle: a
// naive visitor that reapplies the deactivation predicate to a body it
// has already considered in this traversal would see
// WorkerResult.TraversedBodies.Add return false on the repeat and wrongly
// abort, so a cycle would never sleep. It must instead gate the revisit
// check ahead of the predicate and accept the whole ring.
func TestUpdateAcceptsCyclicIslandSquare(t *testing.T) {
	b, s, handlesList := square(true)
	d := New()
	d.TestedFractionPerFrame = 1.0
	d.TargetDeactivatedFraction = 1.0
	d.TargetTraversedFraction = 1.0
	disp := dispatch.New(1, 64, 64)

	report := d.Update(disp, b, s, true)

	if report.BodiesDeactivated != 4 {
		t.Fatalf("expected all 4 bodies in the cycle deactivated, got %d", report.BodiesDeactivated)
	}
	if len(report.AcceptedIslands) != 1 {
		t.Fatalf("expected exactly one accepted island, got %d", len(report.AcceptedIslands))
	}
	if got := len(report.AcceptedIslands[0].OriginalBodyIndices); got != 4 {
		t.Fatalf("expected the accepted island to contain all 4 bodies, got %d", got)
	}
	if b.ActiveSet().Count() != 4 {
		t.Fatalf("expected active set untouched by the core, got %d", b.ActiveSet().Count())
	}

	b.RemoveFromActive(report.AcceptedIslands[0].OriginalBodyIndices)
	if b.ActiveSet().Count() != 0 {
		t.Fatalf("expected active set empty after caller removal, got %d", b.ActiveSet().Count())
	}
	_ = handlesList
}

func TestForceDeactivateIgnoresCandidateFlag(t *testing.T) {
	b, s, _ := chain(3, false)
	d := New()
	disp := dispatch.New(1, 64, 64)

	report := d.ForceDeactivate(b, s, disp, []handles.BodyIndex{0})

	if report.BodiesDeactivated != 3 {
		t.Fatalf("expected whole component force-deactivated, got %d", report.BodiesDeactivated)
	}
	if b.ActiveSet().Count() != 3 {
		t.Fatalf("expected active set untouched by the core, got %d", b.ActiveSet().Count())
	}

	for _, island := range report.AcceptedIslands {
		b.RemoveFromActive(island.OriginalBodyIndices)
	}
	if b.ActiveSet().Count() != 0 {
		t.Fatalf("expected active set drained after caller removal, got %d", b.ActiveSet().Count())
	}
}

// TestDedupeTwoWorkersSameIslandKeepsFirst covers spec.md's two-worker
// duplicate scenario directly at the dedup boundary, independent of
// actual goroutine scheduling: two workers each run their own traversal
// over the same chain from opposite ends, both succeed in isolation, and
// dedupe must keep only the earlier-indexed worker's island.
func TestDedupeTwoWorkersSameIslandKeepsFirst(t *testing.T) {
	b, s, _ := chain(4, true)
	active := b.ActiveSet()
	pool := bufferpool.New(64, 64)

	worker0 := newWorkerResult(active.Count())
	island0, ok := collectIsland(0, candidatePredicate, worker0, active, s, pool, 64, 64)
	if !ok {
		t.Fatalf("expected worker0's traversal from seed 0 to succeed")
	}
	worker0.Islands = append(worker0.Islands, island0)

	worker1 := newWorkerResult(active.Count())
	island1, ok := collectIsland(3, candidatePredicate, worker1, active, s, pool, 64, 64)
	if !ok {
		t.Fatalf("expected worker1's traversal from seed 3 to succeed")
	}
	worker1.Islands = append(worker1.Islands, island1)

	ids := idpool.New(1)
	accepted, duplicates := dedupe([]*WorkerResult{worker0, worker1}, active.Count(), ids)

	if duplicates != 1 {
		t.Fatalf("expected worker1's island to be flagged a duplicate, got %d duplicates", duplicates)
	}
	if len(accepted) != 1 {
		t.Fatalf("expected exactly one accepted island, got %d", len(accepted))
	}
	if len(accepted[0].island.BodyIndices) != 4 {
		t.Fatalf("expected the accepted island to contain all 4 bodies, got %d", len(accepted[0].island.BodyIndices))
	}
}

func TestDeterministicModeProducesSameSeedsEachRun(t *testing.T) {
	b1, _, _ := chain(20, true)
	b2, _, _ := chain(20, true)

	d1 := New()
	d2 := New()

	seeds1 := d1.selectTargets(b1.ActiveSet(), true)
	seeds2 := d2.selectTargets(b2.ActiveSet(), true)

	if len(seeds1) != len(seeds2) {
		t.Fatalf("seed count mismatch: %d vs %d", len(seeds1), len(seeds2))
	}
	for i := range seeds1 {
		if seeds1[i] != seeds2[i] {
			t.Fatalf("seed %d diverged: %v vs %v", i, seeds1[i], seeds2[i])
		}
	}
}
