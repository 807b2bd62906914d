// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package solver is the other external collaborator named in spec.md
// §6: storage of constraint data organized into the same numbered sets
// as bodies, addressed by ConstraintHandle, with per-type gather
// delegated to a TypeProcessor. Like bodies, this is interface-level per
// the core's needs, with a reference in-memory implementation.
package solver

import (
	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/handles"
)

// TypeID identifies a concrete constraint type (distance, ball-socket,
// weld, ...). The core never interprets it beyond grouping.
type TypeID int

// TypeBatchHandles is the pre-gather representation of one type's slice
// of a proto-batch: still indexed by handle, not yet materialized into a
// TypeBatch.
type TypeBatchHandles struct {
	TypeID            TypeID
	ConstraintHandles []handles.ConstraintHandle
}

// ProtoBatch groups the TypeBatchHandles discovered for one island
// traversal, in encounter order.
type ProtoBatch struct {
	TypeBatches []TypeBatchHandles
}

// TypeBatch is gathered, set-resident storage for all constraints of one
// type within a batch. Payload is left opaque (interface{}) because the
// core only moves it, never interprets it.
type TypeBatch struct {
	TypeID  TypeID
	Handles []handles.ConstraintHandle
	Payload interface{}
}

// Batch is one ordered group of TypeBatches, the gathered counterpart of
// a ProtoBatch.
type Batch struct {
	TypeBatches []TypeBatch
}

// ConstraintSet is the constraint-data payload of one set, mirroring
// bodies.BodySet.
type ConstraintSet struct {
	Batches []Batch
}

// TypeProcessor performs the type-specific gather for a [start, end)
// range of one type batch in one dispatch, per spec.md §4.4.
type TypeProcessor interface {
	GatherActiveConstraints(
		active *bodies.BodySet,
		sourceHandles []handles.ConstraintHandle,
		start, end int,
		target *TypeBatch,
	)
}

// Solver is the external interface the deactivator depends on.
type Solver interface {
	HighestPossiblyClaimedConstraintID() int
	// EnumerateConnectedBodies invokes visit once per body index
	// connected to the constraint named by h, active set only.
	EnumerateConnectedBodies(h handles.ConstraintHandle, visit func(handles.BodyIndex))
	Set(id handles.SetID) *ConstraintSet
	EnsureSetsCapacity(highestSetID int)
	ResizeSetsCapacity(currentHighestSetID int)
	SetSlot(id handles.SetID, set *ConstraintSet)
	TypeProcessor(t TypeID) TypeProcessor
	// BuildProtoBatch groups constraintHandles (in first-discovery order,
	// as produced by a single island traversal) into a ProtoBatch by
	// type, so the gather phase can partition per type batch.
	BuildProtoBatch(constraintHandles []handles.ConstraintHandle) ProtoBatch
}
