// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hull builds an indexed face-vertex convex hull from an
// arbitrary point cloud via 3D gift-wrapping: an extreme-face kernel
// finds one face at a time, a 2D reduction pass turns its raw coplanar
// point set into a clean polygon, and edge expansion walks the boundary
// until every edge has been shared by exactly two faces.
package hull

import (
	"github.com/chewxy/math32"

	"github.com/SunGuangdong/physgo/geom"
)

// HullData is the topology produced by ComputeHull: a dense remap from
// hull-local vertex indices back to the source point cloud, plus a
// face-vertex index buffer sliced by FaceStartIndices.
type HullData struct {
	OriginalVertexMapping []int
	FaceStartIndices      []int
	FaceVertexIndices     []int
}

// FaceCount is the number of faces in the hull.
func (d HullData) FaceCount() int { return len(d.FaceStartIndices) }

// Face returns the hull-local vertex indices of face f, as a slice into
// FaceVertexIndices.
func (d HullData) Face(f int) []int {
	start := d.FaceStartIndices[f]
	end := len(d.FaceVertexIndices)
	if f+1 < len(d.FaceStartIndices) {
		end = d.FaceStartIndices[f+1]
	}
	return d.FaceVertexIndices[start:end]
}

const planeEpsilonScale = 1e-6
const coincidentPointEpsilon = 1e-7

// ComputeHull converts points into a convex hull topology. It is a pure,
// single-threaded function of its input, per spec's concurrency model for
// the hull builder. It takes no buffer pool: all scratch memory is
// allocated with make and left to the garbage collector.
func ComputeHull(points []geom.Vec3) HullData {
	n := len(points)
	switch {
	case n == 0:
		return HullData{}
	case n <= 3:
		return identityHull(n)
	}

	centroid := centroidOf(points)
	v0, farthest := farthestFromCentroid(points, centroid)
	if farthest < coincidentPointEpsilon {
		return HullData{OriginalVertexMapping: []int{v0}}
	}

	planeEpsilon := planeEpsilonScale * farthest
	allowVertex := make([]bool, n)
	for i := range allowVertex {
		allowVertex[i] = true
	}

	var faces []rawFace
	edges := newEdgeTable()

	addFace := func(raw []int, normal geom.Vec3) bool {
		ordered, ok := reduceFace(raw, normal, points, allowVertex)
		if !ok {
			for _, i := range raw {
				allowVertex[i] = false
			}
			return false
		}
		faces = append(faces, rawFace{indices: ordered, normal: normal})
		for i := 0; i < len(ordered); i++ {
			a := ordered[i]
			b := ordered[(i+1)%len(ordered)]
			if edges.bump(a, b) == 1 {
				edges.push(a, b, normal)
			}
		}
		return true
	}

	// Initial face: v0 is farthest from the centroid, so the plane through
	// v0 perpendicular to the centroid->v0 direction supports every point.
	// Rotate that plane about an axis through v0 (bx points inward along
	// -dir, by lies in the plane), treating v0 as both "ignore" endpoints
	// since there is no seed edge yet. If only two points land on the
	// rotated plane, their edge seeds the expansion directly.
	dir := points[v0].Sub(centroid)
	if dir.LengthSquared() == 0 {
		dir = geom.Vec3{X: 1}
	}
	dir = dir.Norm()
	_, by := geom.Basis(dir)
	bx := dir.Mul(-1)
	raw, normal, ok := extremeFace(points, points[v0], bx, by, v0, v0, planeEpsilon)
	if ok {
		if len(raw) == 2 {
			edges.push(raw[0], raw[1], normal)
		} else {
			addFace(raw, normal)
		}
	}

	for {
		e, ok := edges.pop()
		if !ok {
			break
		}
		if edges.count(e.a, e.b) >= 2 {
			continue
		}
		o := points[e.a]
		edgeOffset := points[e.b].Sub(o)
		basisY := edgeOffset.Cross(e.parentNormal)
		basisX := edgeOffset.Cross(basisY)
		if basisX.LengthSquared() == 0 || basisY.LengthSquared() == 0 {
			continue
		}
		basisX = basisX.Norm()
		basisY = basisY.Norm()

		raw, normal, ok := extremeFace(points, o, basisX, basisY, e.a, e.b, planeEpsilon)
		// A face facing exactly away from its parent only occurs when the
		// whole cloud is flat; it would duplicate the parent as a back face.
		if !ok || normal.Dot(e.parentNormal) < -1+planeEpsilonScale {
			continue
		}
		addFace(raw, normal)
	}

	return remap(faces)
}

func identityHull(n int) HullData {
	mapping := make([]int, n)
	for i := range mapping {
		mapping[i] = i
	}
	if n < 3 {
		return HullData{OriginalVertexMapping: mapping}
	}
	return HullData{
		OriginalVertexMapping: mapping,
		FaceStartIndices:      []int{0},
		FaceVertexIndices:     []int{0, 1, 2},
	}
}

func centroidOf(points []geom.Vec3) geom.Vec3 {
	var sum geom.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float32(len(points)))
}

func farthestFromCentroid(points []geom.Vec3, centroid geom.Vec3) (int, float32) {
	best := 0
	bestDistSq := float32(-1)
	for i, p := range points {
		d := p.DistanceSquared(centroid)
		if d > bestDistSq {
			bestDistSq = d
			best = i
		}
	}
	return best, math32.Sqrt(bestDistSq)
}

type faceNormalRef struct {
	a, b         int
	parentNormal geom.Vec3
}

// edgeTable is the stack-plus-count structure §4.5's edge expansion
// describes: an unordered-pair edge-count map, and a LIFO of edges still
// to expand.
type edgeTable struct {
	counts map[[2]int]int
	stack  []faceNormalRef
}

func newEdgeTable() *edgeTable {
	return &edgeTable{counts: make(map[[2]int]int)}
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (t *edgeTable) bump(a, b int) int {
	k := edgeKey(a, b)
	t.counts[k]++
	return t.counts[k]
}

func (t *edgeTable) count(a, b int) int {
	return t.counts[edgeKey(a, b)]
}

func (t *edgeTable) push(a, b int, parentNormal geom.Vec3) {
	t.stack = append(t.stack, faceNormalRef{a: a, b: b, parentNormal: parentNormal})
}

func (t *edgeTable) pop() (faceNormalRef, bool) {
	if len(t.stack) == 0 {
		return faceNormalRef{}, false
	}
	e := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return e, true
}

// rawFace is one accepted, wound face awaiting the final remap pass.
type rawFace struct {
	indices []int
	normal  geom.Vec3
}

// remap walks accepted faces in discovery order, assigning each
// first-seen original vertex index a dense hull-local index.
func remap(faces []rawFace) HullData {
	hullIndex := make(map[int]int)
	var mapping []int
	var faceVerts []int
	var faceStarts []int

	for _, f := range faces {
		faceStarts = append(faceStarts, len(faceVerts))
		for _, orig := range f.indices {
			hi, ok := hullIndex[orig]
			if !ok {
				hi = len(mapping)
				hullIndex[orig] = hi
				mapping = append(mapping, orig)
			}
			faceVerts = append(faceVerts, hi)
		}
	}

	return HullData{
		OriginalVertexMapping: mapping,
		FaceStartIndices:      faceStarts,
		FaceVertexIndices:     faceVerts,
	}
}
