//
// Copyright (c) 2026 Osmose Engineering
//

package slicer

import (
	"image"

	implicit "github.com/osmose-engineering/implicit-geometry"
	"github.com/osmose-engineering/implicit-geometry/mesh"
)

// shellScale is the uniform shrink applied to the mesh to carve out
// the interior region that receives infill.
const shellScale = 0.98

// HybridOptions extend the raster options with the infill pattern.
type HybridOptions struct {
	Options

	// Infill is evaluated inside the shrunk interior; a pixel is
	// filled where the field is non-positive. A nil Infill leaves
	// the interior empty, producing a pure shell.
	Infill implicit.Field
}

// SliceHybrid produces shell-plus-infill layers: the region between
// the mesh and a copy shrunk about its bounding-box center is always
// solid, and the interior of the shrunk copy is masked by the infill
// field.
func SliceHybrid(src mesh.Source, bounds implicit.Bounds, opts HybridOptions) (*implicit.Stack, error) {
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

	g := newGrid(bounds, opts.Options)
	err := eachLayer(total, opts.Progress, func(n int) error {
		z := bounds.ZMin + float64(n)*opts.LayerThickness

		outer := image.NewGray(image.Rect(0, 0, g.resX, g.resY))
		rasterPolygons(outer, g, src.CrossSection(z))

		inner := image.NewGray(image.Rect(0, 0, g.resX, g.resY))
		rasterPolygons(inner, g, shrunkSection(src, z, shellScale))

		img := image.NewGray(image.Rect(0, 0, g.resX, g.resY))
		for iy := 0; iy < g.resY; iy++ {
			y := g.worldY(iy)
			outRow := outer.Pix[iy*outer.Stride:]
			inRow := inner.Pix[iy*inner.Stride:]
			row := img.Pix[iy*img.Stride:]
			for ix := 0; ix < g.resX; ix++ {
				switch {
				case outRow[ix] != 0 && inRow[ix] == 0:
					row[ix] = 0xff
				case inRow[ix] != 0 && opts.Infill != nil:
					p := implicit.Vec3{X: g.worldX(ix), Y: y, Z: z}
					if opts.Infill.Evaluate(p) <= 0 {
						row[ix] = 0xff
					}
				}
			}
		}
		stack.Layers[n] = implicit.Layer{Z: z, Image: img}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stack, nil
}
