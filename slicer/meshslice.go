//
// Copyright (c) 2026 Osmose Engineering
//

package slicer

import (
	"image"
	"sort"

	implicit "github.com/osmose-engineering/implicit-geometry"
	"github.com/osmose-engineering/implicit-geometry/mesh"
)

// SliceMesh rasterizes the cross-section polygons of a mesh source,
// one layer per z step. Layers whose section is empty stay blank.
func SliceMesh(src mesh.Source, bounds implicit.Bounds, opts Options) (*implicit.Stack, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	total := bounds.LayerCount(opts.LayerThickness)
	stack := &implicit.Stack{
		Bounds:         bounds,
		LayerThickness: opts.LayerThickness,
		Layers:         make([]implicit.Layer, total),
	}

	g := newGrid(bounds, opts)
	err := eachLayer(total, opts.Progress, func(n int) error {
		z := bounds.ZMin + float64(n)*opts.LayerThickness
		img := image.NewGray(image.Rect(0, 0, g.resX, g.resY))
		rasterPolygons(img, g, src.CrossSection(z))
		stack.Layers[n] = implicit.Layer{Z: z, Image: img}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stack, nil
}

// rasterPolygons fills the even-odd interior of a polygon set. Holes
// are plain rings here: even-odd winding cancels them without needing
// the outer/hole distinction.
func rasterPolygons(img *image.Gray, g grid, polys []mesh.Polygon) {
	var rings []mesh.Ring
	for _, p := range polys {
		rings = append(rings, p.Outer)
		rings = append(rings, p.Holes...)
	}
	if len(rings) == 0 {
		return
	}
	for iy := 0; iy < g.resY; iy++ {
		y := g.worldY(iy)
		xs := rowCrossings(rings, y)
		if len(xs) == 0 {
			continue
		}
		row := img.Pix[iy*img.Stride : iy*img.Stride+g.resX]
		fillSpans(row, g, xs)
	}
}

// rowCrossings collects the x coordinates where the scanline at height
// y crosses any ring edge. The half-open edge rule [min, max) keeps
// vertices from being counted twice.
func rowCrossings(rings []mesh.Ring, y float64) []float64 {
	var xs []float64
	for _, ring := range rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			if (y >= a.Y && y < b.Y) || (y >= b.Y && y < a.Y) {
				t := (y - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
	}
	sort.Float64s(xs)
	return xs
}

// fillSpans marks pixels whose center lies inside an even-odd span.
func fillSpans(row []uint8, g grid, xs []float64) {
	for i := 0; i+1 < len(xs); i += 2 {
		lo, hi := xs[i], xs[i+1]
		for ix := 0; ix < g.resX; ix++ {
			x := g.worldX(ix)
			if x >= lo && x <= hi {
				row[ix] = 0xff
			}
		}
	}
}

// shrunkSection is the cross-section of the mesh scaled by factor
// about the center of its bounding box. The section at slab height z
// samples the original mesh at the pre-image height and scales the
// resulting rings back out.
func shrunkSection(src mesh.Source, z, factor float64) []mesh.Polygon {
	min, max := src.Bounds()
	cx := (min.X + max.X) / 2
	cy := (min.Y + max.Y) / 2
	cz := (min.Z + max.Z) / 2

	srcZ := cz + (z-cz)/factor
	polys := src.CrossSection(srcZ)
	out := make([]mesh.Polygon, len(polys))
	for i, p := range polys {
		out[i] = mesh.Polygon{
			Outer: scaleRing(p.Outer, cx, cy, factor),
			Holes: make([]mesh.Ring, len(p.Holes)),
		}
		for j, h := range p.Holes {
			out[i].Holes[j] = scaleRing(h, cx, cy, factor)
		}
	}
	return out
}

func scaleRing(r mesh.Ring, cx, cy, factor float64) mesh.Ring {
	out := make(mesh.Ring, len(r))
	for i, p := range r {
		out[i] = mesh.Point2{
			X: cx + (p.X-cx)*factor,
			Y: cy + (p.Y-cy)*factor,
		}
	}
	return out
}
