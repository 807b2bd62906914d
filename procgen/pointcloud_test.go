// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package procgen

import "testing"

func TestGenerateProducesRequestedCount(t *testing.T) {
	g := NewRockGenerator(7)
	points := g.Generate(64, 5)
	if len(points) != 64 {
		t.Fatalf("expected 64 points, got %d", len(points))
	}
	for _, p := range points {
		d := p.Length()
		if d < 3 || d > 7 {
			t.Fatalf("point %v too far from requested radius 5: distance %f", p, d)
		}
	}
}

func TestGenerateEmptyForNonPositiveCount(t *testing.T) {
	g := NewRockGenerator(1)
	if points := g.Generate(0, 5); points != nil {
		t.Fatalf("expected nil for count 0, got %v", points)
	}
}

func TestGenerateDeterministicForSameSeed(t *testing.T) {
	a := NewRockGenerator(42).Generate(32, 2)
	b := NewRockGenerator(42).Generate(32, 2)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical output for identical seed at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}
