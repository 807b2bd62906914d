// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package bodies

import (
	"sort"

	"github.com/SunGuangdong/physgo/handles"
)

// InMemory is a reference Bodies implementation over plain slices,
// analogous in spirit to world/sector's World but without spatial
// partitioning — the core only ever needs position-by-index and
// handle-by-map, never a radius query.
type InMemory struct {
	sets     []*BodySet // index 0 is always the active set
	location map[handles.BodyHandle]Location
}

// NewInMemory creates an InMemory store with the given active set
// already installed at id 0.
func NewInMemory(active *BodySet) *InMemory {
	b := &InMemory{
		sets:     []*BodySet{active},
		location: make(map[handles.BodyHandle]Location, active.Count()),
	}
	for i, h := range active.IndexToHandle {
		b.location[h] = Location{Set: handles.ActiveSetID, Index: handles.BodyIndex(i)}
	}
	return b
}

func (b *InMemory) ActiveSet() *BodySet { return b.sets[handles.ActiveSetID] }

func (b *InMemory) HandleToLocation(h handles.BodyHandle) (Location, bool) {
	loc, ok := b.location[h]
	return loc, ok
}

func (b *InMemory) Set(id handles.SetID) *BodySet {
	if int(id) >= len(b.sets) {
		return nil
	}
	return b.sets[id]
}

func (b *InMemory) EnsureSetsCapacity(highestSetID int) {
	if highestSetID < len(b.sets) {
		return
	}
	grown := make([]*BodySet, highestSetID+1)
	copy(grown, b.sets)
	b.sets = grown
}

func (b *InMemory) ResizeSetsCapacity(currentHighestSetID int) {
	if currentHighestSetID+1 == len(b.sets) {
		return
	}
	resized := make([]*BodySet, currentHighestSetID+1)
	copy(resized, b.sets)
	b.sets = resized
}

func (b *InMemory) SetSlot(id handles.SetID, set *BodySet) {
	b.EnsureSetsCapacity(int(id))
	b.sets[id] = set
}

func (b *InMemory) RecordLocation(h handles.BodyHandle, loc Location) {
	b.location[h] = loc
}

// RemoveFromActive evicts indices from the active set via swap-remove,
// highest index first so earlier removals never invalidate a later one,
// updating the location of whichever body gets swapped into a vacated
// slot. It is not part of the Bodies interface the deactivator depends
// on — the core only ever copies accepted islands out via gather and
// reports which indices it copied; compacting the active set afterward
// is the caller's job, using TickReport.AcceptedIslands[].
// OriginalBodyIndices to build indices. indices is assumed disjoint, as
// dedupe guarantees for accepted islands.
func (b *InMemory) RemoveFromActive(indices []handles.BodyIndex) {
	if len(indices) == 0 {
		return
	}
	active := b.ActiveSet()
	sorted := append([]handles.BodyIndex(nil), indices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	for _, idx := range sorted {
		last := active.Count() - 1
		if int(idx) != last {
			active.IndexToHandle[idx] = active.IndexToHandle[last]
			active.Activity[idx] = active.Activity[last]
			active.Collidables[idx] = active.Collidables[last]
			active.Constraints[idx] = active.Constraints[last]
			active.LocalInertias[idx] = active.LocalInertias[last]
			active.Poses[idx] = active.Poses[last]
			active.Velocities[idx] = active.Velocities[last]
			b.RecordLocation(active.IndexToHandle[idx], Location{Set: handles.ActiveSetID, Index: idx})
		}
		active.IndexToHandle = active.IndexToHandle[:last]
		active.Activity = active.Activity[:last]
		active.Collidables = active.Collidables[:last]
		active.Constraints = active.Constraints[:last]
		active.LocalInertias = active.LocalInertias[:last]
		active.Poses = active.Poses[:last]
		active.Velocities = active.Velocities[:last]
	}
}
