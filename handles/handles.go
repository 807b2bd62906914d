// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package handles defines the small stable-identifier types shared by
// bodies and solver, kept in their own package so neither of those
// packages has to import the other just to talk about ids. Mirrors the
// role world.EntityID plays for mk48: a stable identifier independent
// of array position (see world/entity_id.go).
package handles

import "strconv"

// BodyHandle identifies a body independent of its current array
// position. Stable across gathers, unlike BodyIndex.
type BodyHandle uint32

// ConstraintHandle identifies a constraint independent of its current
// array position.
type ConstraintHandle uint32

// BodyIndex is the current position of a body within whichever set it
// lives in.
type BodyIndex int

// SetID names a BodySet/ConstraintSet slot. 0 is reserved for the
// active set; 1.. are inactive (sleeping) sets.
type SetID int

// ActiveSetID is the reserved id of the always-present active set.
const ActiveSetID SetID = 0

// AppendText appends the handle's hex encoding to buf, following
// world.EntityID.AppendText's convention of a bare (unquoted) hex run
// so a caller quoting for JSON controls its own quotes.
func (h BodyHandle) AppendText(buf []byte) []byte {
	return strconv.AppendUint(buf, uint64(h), 16)
}

func (h BodyHandle) String() string {
	return string(h.AppendText(nil))
}

// AppendText appends the handle's hex encoding to buf.
func (h ConstraintHandle) AppendText(buf []byte) []byte {
	return strconv.AppendUint(buf, uint64(h), 16)
}

func (h ConstraintHandle) String() string {
	return string(h.AppendText(nil))
}
