// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"github.com/SunGuangdong/physgo/bodies"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/pkg/config"
	"github.com/SunGuangdong/physgo/solver"
)

const distanceConstraintType solver.TypeID = 1

// buildScene lays out cfg.World.ChainCount independent constraint
// chains of cfg.World.ChainLength bodies each into one active set, the
// same shape deactivation's own chain() test helper builds but scaled
// to however many disjoint islands the config asks for.
func buildScene(w config.WorldConfig) (*bodies.InMemory, *solver.InMemory) {
	total := w.ChainCount * w.ChainLength
	active := bodies.NewBodySet(total)
	bodyHandles := make([]handles.BodyHandle, total)

	for i := 0; i < total; i++ {
		h := handles.BodyHandle(i + 1)
		bodyHandles[i] = h
		active.IndexToHandle[i] = h
		active.Activity[i] = bodies.Activity{DeactivationCandidate: true}
	}

	b := bodies.NewInMemory(active)
	s := solver.NewInMemory(b)

	for c := 0; c < w.ChainCount; c++ {
		base := c * w.ChainLength
		for i := 0; i < w.ChainLength-1; i++ {
			a, z := base+i, base+i+1
			ch := s.AddConstraint(distanceConstraintType, bodyHandles[a], bodyHandles[z])
			active.Constraints[a] = append(active.Constraints[a], bodies.ConstraintReference{ConnectingConstraintHandle: ch, IndexInConstraint: 0})
			active.Constraints[z] = append(active.Constraints[z], bodies.ConstraintReference{ConnectingConstraintHandle: ch, IndexInConstraint: 1})
		}
	}

	return b, s
}
