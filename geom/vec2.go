// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package geom provides the float32 vector math shared by the
// deactivator's pose/velocity carry-through and the hull builder's
// point-cloud projections.
package geom

import (
	"github.com/chewxy/math32"
)

// Vec2 is a 2D vector, used by the hull builder's 2D face-reduction
// projections.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(f float32) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

// Cross is the Z component of the 3D cross product of v and o.
func (v Vec2) Cross(o Vec2) float32 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) LengthSquared() float32 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Length() float32        { return math32.Sqrt(v.LengthSquared()) }

func (v Vec2) Norm() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return v.Mul(1.0 / l)
}

// Distance matches world.Vec2f.Distance's naming from the teacher.
func (v Vec2) Distance(o Vec2) float32 { return v.Sub(o).Length() }

func (v Vec2) DistanceSquared(o Vec2) float32 { return v.Sub(o).LengthSquared() }
