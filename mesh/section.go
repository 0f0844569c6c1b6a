//
// Copyright (c) 2026 Osmose Engineering
//

package mesh

import (
	"math"
	"sort"
)

// CrossSection implements Source: every triangle crossing the plane z
// contributes one segment; segments are chained into closed rings and the
// rings nested into polygons with holes. A plane that misses the mesh
// returns nil.
func (m *TriMesh) CrossSection(z float64) []Polygon {
	var segs []segment
	for i := range m.Triangles {
		if s, ok := trianglePlaneSegment(&m.Triangles[i], z); ok {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return nil
	}

	rings := chainSegments(segs)
	if len(rings) == 0 {
		return nil
	}
	return nestRings(rings)
}

type segment struct {
	a, b Point2
}

// trianglePlaneSegment clips one triangle against the plane. Triangles
// touching the plane in a single vertex or lying in it contribute
// nothing; the neighbors sharing their edges produce the section there.
func trianglePlaneSegment(tri *Triangle, z float64) (segment, bool) {
	var above, below [3]bool
	nAbove := 0
	for i, v := range tri {
		above[i] = v.Z > z
		below[i] = v.Z < z
		if above[i] {
			nAbove++
		}
	}
	nBelow := 0
	for _, b := range below {
		if b {
			nBelow++
		}
	}
	if nAbove == 0 || nBelow == 0 {
		return segment{}, false
	}

	var pts []Point2
	for i := 0; i < 3; i++ {
		v0 := tri[i]
		v1 := tri[(i+1)%3]
		if (v0.Z-z)*(v1.Z-z) < 0 {
			t := (z - v0.Z) / (v1.Z - v0.Z)
			pts = append(pts, Point2{
				X: v0.X + t*(v1.X-v0.X),
				Y: v0.Y + t*(v1.Y-v0.Y),
			})
		} else if v0.Z == z {
			pts = append(pts, Point2{X: v0.X, Y: v0.Y})
		}
	}
	if len(pts) < 2 {
		return segment{}, false
	}
	return segment{a: pts[0], b: pts[1]}, true
}

// quantize collapses nearly-identical endpoints so chains close despite
// float noise from independent edge intersections.
func quantize(p Point2) [2]int64 {
	const grid = 1e7
	return [2]int64{int64(math.Round(p.X * grid)), int64(math.Round(p.Y * grid))}
}

func chainSegments(segs []segment) []Ring {
	type end struct {
		seg  int
		at   Point2
		away Point2
	}
	adj := make(map[[2]int64][]end, len(segs)*2)
	for i, s := range segs {
		adj[quantize(s.a)] = append(adj[quantize(s.a)], end{seg: i, at: s.a, away: s.b})
		adj[quantize(s.b)] = append(adj[quantize(s.b)], end{seg: i, at: s.b, away: s.a})
	}

	used := make([]bool, len(segs))
	var rings []Ring

	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		ring := Ring{segs[i].a, segs[i].b}
		startKey := quantize(segs[i].a)

		for {
			key := quantize(ring[len(ring)-1])
			if key == startKey {
				ring = ring[:len(ring)-1] // closing vertex is implicit
				break
			}
			next := -1
			var nextAway Point2
			for _, e := range adj[key] {
				if !used[e.seg] {
					next = e.seg
					nextAway = e.away
					break
				}
			}
			if next < 0 {
				ring = nil // open chain, drop it
				break
			}
			used[next] = true
			ring = append(ring, nextAway)
		}

		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	return rings
}

// signedArea is the shoelace formula; positive for counter-clockwise.
func signedArea(r Ring) float64 {
	area := 0.0
	for i, p := range r {
		q := r[(i+1)%len(r)]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

// containsPoint is an even-odd crossing test.
func containsPoint(r Ring, p Point2) bool {
	inside := false
	for i, a := range r {
		b := r[(i+1)%len(r)]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// nestRings classifies rings by containment parity: even depth rings are
// exterior boundaries, odd depth rings are holes of their tightest
// enclosing exterior.
func nestRings(rings []Ring) []Polygon {
	type info struct {
		ring  Ring
		area  float64
		depth int
	}
	infos := make([]info, len(rings))
	for i, r := range rings {
		infos[i] = info{ring: r, area: math.Abs(signedArea(r))}
	}
	for i := range infos {
		probe := infos[i].ring[0]
		for j := range infos {
			if i != j && containsPoint(infos[j].ring, probe) {
				infos[i].depth++
			}
		}
	}

	// Tightest container first when assigning holes.
	order := make([]int, len(infos))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return infos[order[a]].area < infos[order[b]].area })

	var polys []Polygon
	outerIndex := make(map[int]int, len(infos))
	for _, i := range order {
		if infos[i].depth%2 == 0 {
			outerIndex[i] = len(polys)
			polys = append(polys, Polygon{Outer: infos[i].ring})
		}
	}
	for _, i := range order {
		if infos[i].depth%2 == 0 {
			continue
		}
		probe := infos[i].ring[0]
		for _, j := range order {
			if infos[j].depth%2 == 0 && infos[j].area >= infos[i].area && containsPoint(infos[j].ring, probe) {
				k := outerIndex[j]
				polys[k].Holes = append(polys[k].Holes, infos[i].ring)
				break
			}
		}
	}
	return polys
}
