// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package procgen generates synthetic point clouds for exercising the
// hull builder outside of a real physics tick: a rock or terrain-chunk
// shape sampled from layered perlin noise, in the spirit of
// terrain/noise's heightmap generator but emitting 3D surface points
// instead of a height byte grid.
package procgen

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/SunGuangdong/physgo/geom"
)

const (
	frequency = 0.15
	amplitude = 0.35
)

// RockGenerator perturbs a unit sphere's surface with perlin noise to
// produce an irregular, hull-friendly point cloud, following
// noise.Generator's habit in terrain/noise/noise.go of layering two
// perlin.Perlin instances at different frequencies rather than calling
// a single octave.
type RockGenerator struct {
	shapeHi *perlin.Perlin
	shapeLo *perlin.Perlin
}

// NewRockGenerator seeds a RockGenerator the way noise.New seeds its
// land/water layers: one instance per frequency band, offset seeds so
// the layers don't correlate.
func NewRockGenerator(seed int64) *RockGenerator {
	return &RockGenerator{
		shapeHi: perlin.NewPerlin(1.8, 2.0, 3, seed),
		shapeLo: perlin.NewPerlin(2.2, 2.5, 2, seed+1),
	}
}

// Generate samples count points over a fibonacci sphere (an even
// angular distribution cheaper than rejection sampling), displacing
// each along its own normal by a perlin sample of the 3D direction
// projected onto 2D noise space.
func (g *RockGenerator) Generate(count int, radius float32) []geom.Vec3 {
	if count <= 0 {
		return nil
	}
	points := make([]geom.Vec3, count)
	goldenAngle := 2.39996 // radians; fibonacci-sphere packing constant

	for i := 0; i < count; i++ {
		y := 1 - 2*(float64(i)+0.5)/float64(count)
		r := math.Sqrt(math.Max(0, 1-y*y))
		theta := goldenAngle * float64(i)

		dir := geom.Vec3{
			X: float32(r * math.Cos(theta)),
			Y: float32(y),
			Z: float32(r * math.Sin(theta)),
		}

		hi := g.shapeHi.Noise2D(float64(dir.X)*frequency*10, float64(dir.Z)*frequency*10)
		lo := g.shapeLo.Noise2D(float64(dir.X)*frequency*3, float64(dir.Z)*frequency*3)
		bump := 1 + amplitude*(0.7*hi+0.3*lo)

		points[i] = dir.Mul(radius * float32(bump))
	}
	return points
}
