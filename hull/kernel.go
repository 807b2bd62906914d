// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hull

import "github.com/SunGuangdong/physgo/geom"

// signF returns the sign of v as -1, 0, or 1.
func signF(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// angleScore implements the sign(y)*y^2/(x^2+y^2) comparator from
// spec.md §4.5: it ranks directions by counterclockwise angle from +Y
// without a division, so two candidates compare via cross-multiplied
// numerators/denominators (see better).
func angleScore(x, y float32) (num, den float32) {
	return signF(y) * y * y, x*x + y*y
}

// better reports whether (xa,ya) ranks ahead of (xb,yb) under angleScore,
// comparing the cross-multiplied fractions to avoid a division.
func better(xa, ya, xb, yb float32) bool {
	numA, denA := angleScore(xa, ya)
	numB, denB := angleScore(xb, yb)
	return numA*denB > numB*denA
}

// extremeFace runs the 3D extreme-face kernel from spec.md §4.5: given a
// basis origin o and orthonormal axes bx,by, find the point most
// clockwise-extreme (smallest angle from +by) other than ignoreA/ignoreB,
// then collect every point coplanar with it within the plane epsilon
// derived from the initial farthest distance. Returns ok=false if every
// point was masked out (fully degenerate).
func extremeFace(points []geom.Vec3, o, bx, by geom.Vec3, ignoreA, ignoreB int, planeEpsilon float32) (raw []int, normal geom.Vec3, ok bool) {
	bestIdx := -1
	var bestX, bestY float32

	for i, p := range points {
		if i == ignoreA || i == ignoreB {
			continue
		}
		rel := p.Sub(o)
		x := rel.Dot(bx)
		y := rel.Dot(by)
		if x == 0 && y == 0 {
			continue
		}
		if bestIdx == -1 || better(x, y, bestX, bestY) {
			bestIdx = i
			bestX, bestY = x, y
		}
	}
	if bestIdx == -1 {
		return nil, geom.Vec3{}, false
	}

	nx, ny := -bestY, bestX
	nlen := geom.Vec2{X: nx, Y: ny}.Length()
	if nlen > 0 {
		nx /= nlen
		ny /= nlen
	}
	normal = bx.Mul(nx).Add(by.Mul(ny))
	target := bestX*nx + bestY*ny

	for i, p := range points {
		rel := p.Sub(o)
		x := rel.Dot(bx)
		y := rel.Dot(by)
		proj := x*nx + y*ny
		if abs32(proj-target) <= planeEpsilon {
			raw = append(raw, i)
		}
	}
	return raw, normal, true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
