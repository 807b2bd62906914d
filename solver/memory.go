// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package solver

import (
	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/handles"
)

type constraintDef struct {
	typeID      TypeID
	bodyHandles []handles.BodyHandle
}

// InMemory is a reference Solver implementation used by the
// deactivator's own tests and the demo binary. It resolves
// EnumerateConnectedBodies through a bodies.Bodies so that constraint
// connectivity always reflects the bodies' current active-set layout,
// matching the real solver/body coupling described in spec.md §3.
type InMemory struct {
	bodies     bodies.Bodies
	defs       map[handles.ConstraintHandle]constraintDef
	nextHandle handles.ConstraintHandle
	sets       []*ConstraintSet
	processors map[TypeID]TypeProcessor
}

// NewInMemory creates an empty InMemory solver bound to b.
func NewInMemory(b bodies.Bodies) *InMemory {
	return &InMemory{
		bodies:     b,
		defs:       make(map[handles.ConstraintHandle]constraintDef),
		nextHandle: 1,
		sets:       []*ConstraintSet{{}},
		processors: make(map[TypeID]TypeProcessor),
	}
}

// AddConstraint registers a new constraint of the given type connecting
// the given body handles and returns its handle. Test/fixture helper —
// a real solver's constraint creation lives far outside the core's
// scope.
func (s *InMemory) AddConstraint(typeID TypeID, bodyHandles ...handles.BodyHandle) handles.ConstraintHandle {
	h := s.nextHandle
	s.nextHandle++
	s.defs[h] = constraintDef{typeID: typeID, bodyHandles: append([]handles.BodyHandle(nil), bodyHandles...)}
	return h
}

// RegisterTypeProcessor installs the processor used for typeID's gather.
func (s *InMemory) RegisterTypeProcessor(typeID TypeID, p TypeProcessor) {
	s.processors[typeID] = p
}

func (s *InMemory) HighestPossiblyClaimedConstraintID() int {
	return int(s.nextHandle) - 1
}

func (s *InMemory) EnumerateConnectedBodies(h handles.ConstraintHandle, visit func(handles.BodyIndex)) {
	def, ok := s.defs[h]
	if !ok {
		panic("solver: EnumerateConnectedBodies on unknown constraint handle")
	}
	for _, bh := range def.bodyHandles {
		loc, ok := s.bodies.HandleToLocation(bh)
		if !ok || loc.Set != handles.ActiveSetID {
			continue
		}
		visit(loc.Index)
	}
}

func (s *InMemory) Set(id handles.SetID) *ConstraintSet {
	if int(id) >= len(s.sets) {
		return nil
	}
	return s.sets[id]
}

func (s *InMemory) EnsureSetsCapacity(highestSetID int) {
	if highestSetID < len(s.sets) {
		return
	}
	grown := make([]*ConstraintSet, highestSetID+1)
	copy(grown, s.sets)
	s.sets = grown
}

func (s *InMemory) ResizeSetsCapacity(currentHighestSetID int) {
	if currentHighestSetID+1 == len(s.sets) {
		return
	}
	resized := make([]*ConstraintSet, currentHighestSetID+1)
	copy(resized, s.sets)
	s.sets = resized
}

func (s *InMemory) SetSlot(id handles.SetID, set *ConstraintSet) {
	s.EnsureSetsCapacity(int(id))
	s.sets[id] = set
}

func (s *InMemory) TypeProcessor(t TypeID) TypeProcessor {
	if p, ok := s.processors[t]; ok {
		return p
	}
	return genericProcessor{}
}

// BuildProtoBatch groups constraintHandles into per-type runs, in the
// order each type is first encountered — the traversal's discovery
// order, not a sort, per spec.md §3's "ordered sequence of TypeBatches".
func (s *InMemory) BuildProtoBatch(constraintHandles []handles.ConstraintHandle) ProtoBatch {
	order := make([]TypeID, 0, 4)
	byType := make(map[TypeID][]handles.ConstraintHandle, 4)

	for _, h := range constraintHandles {
		def, ok := s.defs[h]
		if !ok {
			panic("solver: BuildProtoBatch on unknown constraint handle")
		}
		if _, seen := byType[def.typeID]; !seen {
			order = append(order, def.typeID)
		}
		byType[def.typeID] = append(byType[def.typeID], h)
	}

	pb := ProtoBatch{TypeBatches: make([]TypeBatchHandles, len(order))}
	for i, t := range order {
		pb.TypeBatches[i] = TypeBatchHandles{TypeID: t, ConstraintHandles: byType[t]}
	}
	return pb
}

// genericProcessor is the default TypeProcessor for constraint types
// that never registered one: it copies handles into the target batch
// and leaves Payload nil. Good enough for the topology-only tests the
// core cares about; a real engine always registers a concrete processor
// per type.
type genericProcessor struct{}

func (genericProcessor) GatherActiveConstraints(active *bodies.BodySet, sourceHandles []handles.ConstraintHandle, start, end int, target *TypeBatch) {
	// target.Handles must already be sized to len(sourceHandles) by the
	// caller before any worker writes into it: concurrent dispatch hands
	// out disjoint [start,end) ranges of the same slice, and append would
	// race on the shared length/backing array even across disjoint ranges.
	copy(target.Handles[start:end], sourceHandles[start:end])
}
