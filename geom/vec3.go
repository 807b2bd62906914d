// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package geom

import (
	"github.com/chewxy/math32"
)

// Vec3 is a 3D vector. The hull builder's point cloud, basis vectors,
// and face normals are all Vec3 — the teacher's Vec2f (world/vec2f.go)
// is the model for the method set, generalized to three components.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(f float32) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Div(f float32) Vec3 { return v.Mul(1.0 / f) }

func (v Vec3) AddScaled(o Vec3, factor float32) Vec3 {
	return Vec3{v.X + o.X*factor, v.Y + o.Y*factor, v.Z + o.Z*factor}
}

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSquared() float32 { return v.Dot(v) }
func (v Vec3) Length() float32        { return math32.Sqrt(v.LengthSquared()) }

func (v Vec3) Norm() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Div(l)
}

func (v Vec3) Distance(o Vec3) float32        { return v.Sub(o).Length() }
func (v Vec3) DistanceSquared(o Vec3) float32 { return v.Sub(o).LengthSquared() }

// Lerp matches world.Vec2f.Lerp's shape.
func Lerp(a, b, factor float32) float32 {
	return a + (b-a)*factor
}

func (v Vec3) Lerp(o Vec3, factor float32) Vec3 {
	return Vec3{Lerp(v.X, o.X, factor), Lerp(v.Y, o.Y, factor), Lerp(v.Z, o.Z, factor)}
}

// Project2D projects v into the 2D basis (origin o, axes bx, by).
func (v Vec3) Project2D(o Vec3, bx, by Vec3) Vec2 {
	rel := v.Sub(o)
	return Vec2{X: rel.Dot(bx), Y: rel.Dot(by)}
}

// Basis builds an orthonormal (bx, by) pair perpendicular to n (which
// need not be normalized, but must be nonzero).
func Basis(n Vec3) (bx, by Vec3) {
	n = n.Norm()
	// Use +Y as the helper axis unless n is nearly parallel to it
	// (|n.Y| > 0.9), in which case use +X, to avoid a degenerate cross
	// product.
	up := Vec3{X: 0, Y: 1, Z: 0}
	if math32.Abs(n.Y) > 0.9 {
		up = Vec3{X: 1, Y: 0, Z: 0}
	}
	bx = up.Cross(n).Norm()
	by = n.Cross(bx).Norm()
	return
}
