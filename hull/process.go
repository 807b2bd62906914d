// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hull

import "github.com/SunGuangdong/physgo/geom"

// bundleWidth is the lane width used to pack ConvexHull.Points for a
// downstream SIMD consumer. Nothing in this package computes with actual
// hardware SIMD lanes — see DESIGN.md for why a portable Go build sticks
// to plain float32 here — but the packed (bundleIndex, innerIndex)
// addressing is preserved so ProcessHull's output shape matches what a
// narrowphase collider expects to receive.
const bundleWidth = 8

// PointBundle holds up to bundleWidth points, padded with the cloud's
// centroid past pointCount so an unused lane never wins an extrema
// search performed over the bundle.
type PointBundle struct {
	Points [bundleWidth]geom.Vec3
}

// FaceVertexRef addresses one hull vertex by its position in a bundled
// point array.
type FaceVertexRef struct {
	BundleIndex int
	InnerIndex  int
}

// BoundingPlane is one face's outward plane equation: Normal·x = Offset.
type BoundingPlane struct {
	Normal geom.Vec3
	Offset float32
}

// ConvexHull is the SIMD-ready artifact ProcessHull produces: the hull's
// vertices packed into bundles, the same face-vertex topology as
// HullData but addressed as (bundle, lane) pairs, and one bounding plane
// per face.
type ConvexHull struct {
	Bundles           []PointBundle
	FaceStartIndices  []int
	FaceVertexIndices []FaceVertexRef
	Planes            []BoundingPlane
}

// ProcessHull packs hullData's vertices (resolved back through
// OriginalVertexMapping into the source point cloud) into lane bundles
// and derives one outward bounding plane per face.
func ProcessHull(points []geom.Vec3, hullData HullData) ConvexHull {
	hullPoints := make([]geom.Vec3, len(hullData.OriginalVertexMapping))
	for i, orig := range hullData.OriginalVertexMapping {
		hullPoints[i] = points[orig]
	}

	result := ConvexHull{
		Bundles:           buildBundles(hullPoints),
		FaceStartIndices:  append([]int(nil), hullData.FaceStartIndices...),
		FaceVertexIndices: make([]FaceVertexRef, len(hullData.FaceVertexIndices)),
		Planes:            make([]BoundingPlane, hullData.FaceCount()),
	}
	for i, hi := range hullData.FaceVertexIndices {
		result.FaceVertexIndices[i] = FaceVertexRef{BundleIndex: hi / bundleWidth, InnerIndex: hi % bundleWidth}
	}

	for f := 0; f < hullData.FaceCount(); f++ {
		face := hullData.Face(f)
		normal := faceNormalFromWinding(hullPoints, face)
		result.Planes[f] = BoundingPlane{
			Normal: normal,
			Offset: normal.Dot(hullPoints[face[0]]),
		}
	}
	return result
}

func buildBundles(points []geom.Vec3) []PointBundle {
	if len(points) == 0 {
		return nil
	}
	var centroid geom.Vec3
	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float32(len(points)))

	bundleCount := (len(points) + bundleWidth - 1) / bundleWidth
	bundles := make([]PointBundle, bundleCount)
	for i := range bundles {
		for lane := 0; lane < bundleWidth; lane++ {
			bundles[i].Points[lane] = centroid
		}
	}
	for i, p := range points {
		bundles[i/bundleWidth].Points[i%bundleWidth] = p
	}
	return bundles
}

// faceNormalFromWinding recomputes a face's outward normal as the sum of
// triangle-fan cross products around its first vertex, the construction
// property 9 (winding) checks against the normal ProcessHull stores.
func faceNormalFromWinding(points []geom.Vec3, face []int) geom.Vec3 {
	var sum geom.Vec3
	pivot := points[face[0]]
	for i := 1; i+1 < len(face); i++ {
		a := points[face[i]].Sub(pivot)
		b := points[face[i+1]].Sub(pivot)
		sum = sum.Add(a.Cross(b))
	}
	return sum.Norm()
}

// FaceArea returns face f's area, computed the same triangle-fan way as
// faceNormalFromWinding but keeping the cross products' magnitude.
func (h ConvexHull) FaceArea(f int) float32 {
	start := h.FaceStartIndices[f]
	end := len(h.FaceVertexIndices)
	if f+1 < len(h.FaceStartIndices) {
		end = h.FaceStartIndices[f+1]
	}
	face := h.FaceVertexIndices[start:end]
	if len(face) < 3 {
		return 0
	}
	pivot := h.point(face[0])
	var sum float32
	for i := 1; i+1 < len(face); i++ {
		a := h.point(face[i]).Sub(pivot)
		b := h.point(face[i+1]).Sub(pivot)
		sum += a.Cross(b).Length()
	}
	return sum * 0.5
}

// Volume returns the hull's enclosed volume via the divergence-theorem
// sum over triangulated faces, a cheap derived quantity absent from
// spec.md's Non-goals for the builder itself, offered here as a helper
// over its output (see SPEC_FULL.md's supplemented features).
func (h ConvexHull) Volume() float32 {
	var sum float32
	for f := range h.FaceStartIndices {
		start := h.FaceStartIndices[f]
		end := len(h.FaceVertexIndices)
		if f+1 < len(h.FaceStartIndices) {
			end = h.FaceStartIndices[f+1]
		}
		face := h.FaceVertexIndices[start:end]
		if len(face) < 3 {
			continue
		}
		pivot := h.point(face[0])
		for i := 1; i+1 < len(face); i++ {
			a := h.point(face[i])
			b := h.point(face[i+1])
			sum += pivot.Dot(a.Cross(b))
		}
	}
	return sum / 6
}

func (h ConvexHull) point(ref FaceVertexRef) geom.Vec3 {
	return h.Bundles[ref.BundleIndex].Points[ref.InnerIndex]
}
