// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hull

import "github.com/SunGuangdong/physgo/geom"

const collinearRelativeEpsilon = 1e-6

// reduceFace turns a raw, unordered set of coplanar point indices into a
// clean, outward-wound polygon, per spec.md §4.5's "Face reduction".
// Vertices disallowed by a previous reduction are filtered first; if the
// result is empty or otherwise cannot form a valid face, ok is false and
// the caller marks every surviving raw vertex disallowed.
func reduceFace(raw []int, faceNormal geom.Vec3, points []geom.Vec3, allowVertex []bool) ([]int, bool) {
	filtered := raw[:0:0]
	for _, i := range raw {
		if allowVertex[i] {
			filtered = append(filtered, i)
		}
	}

	if len(filtered) < 3 {
		return nil, false
	}
	if len(filtered) == 3 {
		ordered := append([]int(nil), filtered...)
		fixWinding(ordered, points, faceNormal)
		return ordered, true
	}

	bx, by := geom.Basis(faceNormal)
	proj := make([]geom.Vec2, len(filtered))
	var centroid2D geom.Vec2
	for i, idx := range filtered {
		p := points[idx].Project2D(points[filtered[0]], bx, by)
		proj[i] = p
		centroid2D = centroid2D.Add(p)
	}
	centroid2D = centroid2D.Mul(1 / float32(len(filtered)))

	start := 0
	bestDistSq := float32(-1)
	for i, p := range proj {
		d := p.DistanceSquared(centroid2D)
		if d > bestDistSq {
			bestDistSq = d
			start = i
		}
	}

	ordered, ok := giftWrap2D(filtered, proj, start)
	if !ok {
		return nil, false
	}
	var windingNormal geom.Vec3
	pivot := points[ordered[0]]
	for i := 1; i+1 < len(ordered); i++ {
		windingNormal = windingNormal.Add(points[ordered[i]].Sub(pivot).Cross(points[ordered[i+1]].Sub(pivot)))
	}
	if windingNormal.Dot(faceNormal) < 0 {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}
	return ordered, true
}

// fixWinding swaps the first two vertices of a 3-vertex face if its raw
// cross product disagrees with faceNormal, matching spec.md §4.5's
// triangle fast path.
func fixWinding(ordered []int, points []geom.Vec3, faceNormal geom.Vec3) {
	a, b, c := points[ordered[0]], points[ordered[1]], points[ordered[2]]
	cross := b.Sub(a).Cross(c.Sub(a))
	if cross.Dot(faceNormal) < 0 {
		ordered[0], ordered[1] = ordered[1], ordered[0]
	}
}

// giftWrap2D runs the 2D gift wrap described in spec.md §4.5: starting
// at proj[start], repeatedly pick the next vertex forming the smallest
// counterclockwise turn from the previous edge direction, preferring the
// farther of two near-collinear candidates. original[i] maps proj index
// i back to a point-cloud index; the returned slice is in the same
// indexing.
func giftWrap2D(original []int, proj []geom.Vec2, start int) ([]int, bool) {
	n := len(proj)
	visited := make([]bool, n)
	ordered := []int{start}
	visited[start] = true

	current := start
	// No previous edge yet: use +Y as the reference direction, matching
	// the extreme-face kernel's own "+by" reference.
	prevDir := geom.Vec2{X: 0, Y: 1}

	for step := 0; step < n; step++ {
		next := -1
		var bestX, bestY float32
		var bestDistSq float32

		for i := 0; i < n; i++ {
			if visited[i] && i != start {
				continue
			}
			if i == current {
				continue
			}
			rel := proj[i].Sub(proj[current])
			// Rotate rel into the frame where prevDir is +Y: x' = cross,
			// y' = dot, so "angle from prevDir" reuses the same
			// sign(y)*y^2/(x^2+y^2) comparator as the 3D kernel.
			x := prevDir.Cross(rel)
			y := prevDir.Dot(rel)
			if x == 0 && y == 0 {
				continue
			}
			distSq := rel.LengthSquared()

			if next == -1 {
				next, bestX, bestY, bestDistSq = i, x, y, distSq
				continue
			}
			if nearTie(x, y, bestX, bestY) {
				if distSq > bestDistSq {
					next, bestX, bestY, bestDistSq = i, x, y, distSq
				}
				continue
			}
			if better(x, y, bestX, bestY) {
				next, bestX, bestY, bestDistSq = i, x, y, distSq
			}
		}

		if next == -1 {
			return nil, false
		}
		if next == start {
			break
		}

		ordered = append(ordered, next)
		visited[next] = true
		prevDir = proj[next].Sub(proj[current]).Norm()
		current = next
	}

	if len(ordered) < 3 {
		return nil, false
	}

	result := make([]int, len(ordered))
	for i, idx := range ordered {
		result[i] = original[idx]
	}
	return result, true
}

// nearTie reports whether (xa,ya) and (xb,yb) score within
// collinearRelativeEpsilon of each other under angleScore.
func nearTie(xa, ya, xb, yb float32) bool {
	numA, denA := angleScore(xa, ya)
	numB, denB := angleScore(xb, yb)
	lhs := numA * denB
	rhs := numB * denA
	scale := abs32(lhs)
	if abs32(rhs) > scale {
		scale = abs32(rhs)
	}
	if scale == 0 {
		return true
	}
	return abs32(lhs-rhs) <= collinearRelativeEpsilon*scale
}
