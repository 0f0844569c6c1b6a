//
// Copyright (c) 2026 Osmose Engineering
//

package mesh

import (
	"math"
	"testing"
)

// unitCube builds a triangulated axis-aligned cube spanning
// [-1,1] on every axis, with outward-facing winding.
func unitCube() *TriMesh {
	quad := func(a, b, c, d Point) []Triangle {
		return []Triangle{{a, b, c}, {a, c, d}}
	}

	p := func(x, y, z float64) Point { return Point{X: x, Y: y, Z: z} }

	var tris []Triangle
	tris = append(tris, quad(p(-1, -1, -1), p(-1, 1, -1), p(1, 1, -1), p(1, -1, -1))...) // bottom
	tris = append(tris, quad(p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1))...)     // top
	tris = append(tris, quad(p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1))...) // front
	tris = append(tris, quad(p(-1, 1, -1), p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1))...)     // back
	tris = append(tris, quad(p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1))...) // left
	tris = append(tris, quad(p(1, -1, -1), p(1, 1, -1), p(1, 1, 1), p(1, -1, 1))...)     // right
	return NewTriMesh(tris)
}

func TestTriMeshBounds(t *testing.T) {
	cube := unitCube()
	min, max := cube.Bounds()
	if min != (Point{X: -1, Y: -1, Z: -1}) || max != (Point{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("bounds: got %+v, %+v", min, max)
	}
}

func TestTriMeshSignedDistance(t *testing.T) {
	cube := unitCube()

	cases := []struct {
		p    Point
		want float64
	}{
		{Point{}, -1.0},
		{Point{X: 0.5}, -0.5},
		{Point{X: 2}, 1.0},
		{Point{X: 0, Y: 0, Z: 3}, 2.0},
		{Point{X: 2, Y: 2, Z: 2}, math.Sqrt(3)},
	}
	for _, c := range cases {
		got := cube.SignedDistance(c.p)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("at %+v: expected %v, got %v", c.p, c.want, got)
		}
	}
}

func TestTriMeshCrossSection(t *testing.T) {
	cube := unitCube()

	polys := cube.CrossSection(0)
	if len(polys) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polys))
	}
	if len(polys[0].Holes) != 0 {
		t.Fatalf("expected no holes, got %d", len(polys[0].Holes))
	}

	// The section of the unit cube at z=0 is a 2x2 square
	area := math.Abs(signedArea(polys[0].Outer))
	if math.Abs(area-4.0) > 1e-9 {
		t.Errorf("area: expected 4, got %v", area)
	}
}

func TestTriMeshCrossSectionEmpty(t *testing.T) {
	cube := unitCube()
	if polys := cube.CrossSection(5.0); len(polys) != 0 {
		t.Fatalf("expected empty section, got %d polygons", len(polys))
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	loads := 0
	cache := NewCache(func(path string) (Source, error) {
		loads++
		return unitCube(), nil
	})

	for i := 0; i < 3; i++ {
		if _, err := cache.Source("cube.stl"); err != nil {
			t.Fatalf("Source: %v", err)
		}
	}
	if loads != 1 {
		t.Fatalf("expected 1 load, got %d", loads)
	}

	d, err := cache.SignedDistance("cube.stl", Point{})
	if err != nil {
		t.Fatalf("SignedDistance: %v", err)
	}
	if math.Abs(d+1.0) > 1e-9 {
		t.Errorf("center: expected -1, got %v", d)
	}
	if loads != 1 {
		t.Fatalf("expected the cached source, got %d loads", loads)
	}
}
