// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hull

import (
	"math"
	"testing"

	"github.com/chewxy/math32"

	"github.com/SunGuangdong/physgo/geom"
)

func cubeCorners() []geom.Vec3 {
	var pts []geom.Vec3
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				pts = append(pts, geom.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	// Scramble the natural corner order so the builder can't rely on it.
	return []geom.Vec3{pts[5], pts[2], pts[7], pts[0], pts[3], pts[6], pts[1], pts[4]}
}

func TestComputeHullEmpty(t *testing.T) {
	d := ComputeHull(nil)
	if len(d.OriginalVertexMapping) != 0 || d.FaceCount() != 0 {
		t.Fatalf("expected empty hull, got %+v", d)
	}
}

func TestComputeHullTriangleIdentity(t *testing.T) {
	pts := []geom.Vec3{{X: 0}, {X: 1}, {Y: 1}}
	d := ComputeHull(pts)
	if len(d.OriginalVertexMapping) != 3 || d.FaceCount() != 1 {
		t.Fatalf("expected identity triangle hull, got %+v", d)
	}
}

func TestComputeHullCoincidentPoints(t *testing.T) {
	pts := make([]geom.Vec3, 5)
	for i := range pts {
		pts[i] = geom.Vec3{X: 1, Y: 1, Z: 1}
	}
	d := ComputeHull(pts)
	if len(d.OriginalVertexMapping) != 1 || d.FaceCount() != 0 {
		t.Fatalf("expected single-vertex hull for coincident points, got %+v", d)
	}
}

// TestComputeHullCube is end-to-end scenario E5.
func TestComputeHullCube(t *testing.T) {
	pts := cubeCorners()
	d := ComputeHull(pts)

	if d.FaceCount() != 6 {
		t.Fatalf("expected 6 faces, got %d", d.FaceCount())
	}
	if len(d.OriginalVertexMapping) != 8 {
		t.Fatalf("expected 8 hull vertices after remap, got %d", len(d.OriginalVertexMapping))
	}

	edgeCount := make(map[[2]int]int)
	for f := 0; f < d.FaceCount(); f++ {
		face := d.Face(f)
		if len(face) < 3 {
			t.Fatalf("face %d has fewer than 3 vertices: %v", f, face)
		}
		for i := range face {
			a, b := face[i], face[(i+1)%len(face)]
			k := [2]int{a, b}
			if a > b {
				k = [2]int{b, a}
			}
			edgeCount[k]++
		}
	}
	if len(edgeCount) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(edgeCount))
	}
	for k, c := range edgeCount {
		if c != 2 {
			t.Fatalf("edge %v incident to %d faces, expected 2", k, c)
		}
	}

	ch := ProcessHull(pts, d)
	for f, plane := range ch.Planes {
		n := plane.Normal
		axisAligned := (abs32(n.X) > 0.99 && abs32(n.Y) < 0.01 && abs32(n.Z) < 0.01) ||
			(abs32(n.Y) > 0.99 && abs32(n.X) < 0.01 && abs32(n.Z) < 0.01) ||
			(abs32(n.Z) > 0.99 && abs32(n.X) < 0.01 && abs32(n.Y) < 0.01)
		if !axisAligned {
			t.Fatalf("face %d normal %v is not axis-aligned", f, n)
		}
	}
}

// TestComputeHullCoplanarQuadPlusCenter is end-to-end scenario E6.
func TestComputeHullCoplanarQuadPlusCenter(t *testing.T) {
	pts := []geom.Vec3{
		{X: -1, Y: -1},
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: 0, Y: 0}, // midpoint, strictly inside the quad
	}
	d := ComputeHull(pts)

	for _, orig := range d.OriginalVertexMapping {
		if orig == 4 {
			t.Fatalf("expected midpoint (index 4) absent from OriginalVertexMapping, got %v", d.OriginalVertexMapping)
		}
	}
	totalVerts := 0
	for f := 0; f < d.FaceCount(); f++ {
		totalVerts += len(d.Face(f))
	}
	if totalVerts != 4 && totalVerts != 6 {
		t.Fatalf("expected one quad (4) or two triangles (6) total face vertices, got %d", totalVerts)
	}
}

// TestConvexity is property 8.
func TestConvexity(t *testing.T) {
	pts := cubeCorners()
	d := ComputeHull(pts)
	hullPoints := make([]geom.Vec3, len(d.OriginalVertexMapping))
	for i, orig := range d.OriginalVertexMapping {
		hullPoints[i] = pts[orig]
	}
	ch := ProcessHull(pts, d)

	const eps = 1e-4
	for f := 0; f < d.FaceCount(); f++ {
		face := d.Face(f)
		n := ch.Planes[f].Normal
		p := hullPoints[face[0]]
		for _, q := range hullPoints {
			if v := n.Dot(q.Sub(p)); v > eps {
				t.Fatalf("face %d: vertex %v violates convexity (n.(q-p)=%f)", f, q, v)
			}
		}
	}
}

// TestWindingMatchesStoredNormal is property 9.
func TestWindingMatchesStoredNormal(t *testing.T) {
	pts := cubeCorners()
	d := ComputeHull(pts)
	ch := ProcessHull(pts, d)
	for f := 0; f < d.FaceCount(); f++ {
		face := d.Face(f)
		pivot := pts[d.OriginalVertexMapping[face[0]]]
		var sum geom.Vec3
		for i := 1; i+1 < len(face); i++ {
			a := pts[d.OriginalVertexMapping[face[i]]].Sub(pivot)
			b := pts[d.OriginalVertexMapping[face[i+1]]].Sub(pivot)
			sum = sum.Add(a.Cross(b))
		}
		if sum.Dot(ch.Planes[f].Normal) <= 0 {
			t.Fatalf("face %d computed winding normal disagrees with stored plane normal", f)
		}
	}
}

// TestIdempotenceUnderDuplicatePoints is property 10.
func TestIdempotenceUnderDuplicatePoints(t *testing.T) {
	base := cubeCorners()
	baseline := ComputeHull(base)

	withDupes := append(append([]geom.Vec3(nil), base...), base[0], base[0], base[3])
	withDupesHull := ComputeHull(withDupes)

	if baseline.FaceCount() != withDupesHull.FaceCount() {
		t.Fatalf("face count changed with duplicate points: %d vs %d", baseline.FaceCount(), withDupesHull.FaceCount())
	}
}

// TestRotationInvariance is property 11.
func TestRotationInvariance(t *testing.T) {
	base := cubeCorners()
	baseline := ComputeHull(base)

	theta := float32(0.7)
	cos, sin := math32.Cos(theta), math32.Sin(theta)
	rotated := make([]geom.Vec3, len(base))
	for i, p := range base {
		rotated[i] = geom.Vec3{
			X: p.X*cos - p.Z*sin,
			Y: p.Y,
			Z: p.X*sin + p.Z*cos,
		}
	}
	rotatedHull := ComputeHull(rotated)

	if baseline.FaceCount() != rotatedHull.FaceCount() {
		t.Fatalf("face count changed under rotation: %d vs %d", baseline.FaceCount(), rotatedHull.FaceCount())
	}
}

func TestConvexHullVolumeMatchesCube(t *testing.T) {
	pts := cubeCorners()
	d := ComputeHull(pts)
	ch := ProcessHull(pts, d)
	if v := math.Abs(float64(ch.Volume()) - 8); v > 0.05 {
		t.Fatalf("expected volume ~8 for a 2x2x2 cube, got %f", ch.Volume())
	}
}
