//
// Copyright (c) 2026 Osmose Engineering
//

// Package slicer converts scalar fields and mesh sources into raster
// layer stacks ready for archive encoding.
package slicer

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

// Options control the raster grid and layer spacing.
type Options struct {
	ResolutionX    int
	ResolutionY    int
	LayerThickness float64

	// Progress, when non-nil, is called once per completed layer with
	// the number of layers finished so far. Calls are serialized.
	Progress func(done, total int)
}

func (o Options) validate() error {
	if o.ResolutionX < 2 || o.ResolutionY < 2 {
		return fmt.Errorf("resolution %dx%d: %w", o.ResolutionX, o.ResolutionY,
			invalidResolution)
	}
	if o.LayerThickness <= 0 {
		return fmt.Errorf("layer thickness %v must be positive", o.LayerThickness)
	}
	return nil
}

var invalidResolution = implicit.MalformedDocumentError("resolution must be at least 2x2")

// grid maps pixel indices to world coordinates. Pixel (0,0) is the
// top-left of the image, which is the (xmin, ymax) corner of the slab.
type grid struct {
	xmin, ymax float64
	dx, dy     float64
	resX, resY int
}

func newGrid(b implicit.Bounds, o Options) grid {
	return grid{
		xmin: b.XMin,
		ymax: b.YMax,
		dx:   (b.XMax - b.XMin) / float64(o.ResolutionX-1),
		dy:   (b.YMax - b.YMin) / float64(o.ResolutionY-1),
		resX: o.ResolutionX,
		resY: o.ResolutionY,
	}
}

func (g grid) worldX(ix int) float64 { return g.xmin + float64(ix)*g.dx }
func (g grid) worldY(iy int) float64 { return g.ymax - float64(iy)*g.dy }

// Slice samples the field on a regular grid, one layer per z step.
// A pixel is solid when the field evaluates to a non-positive value at
// the pixel center.
func Slice(field implicit.Field, bounds implicit.Bounds, opts Options) (*implicit.Stack, error) {
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
		for iy := 0; iy < g.resY; iy++ {
			y := g.worldY(iy)
			row := img.Pix[iy*img.Stride : iy*img.Stride+g.resX]
			for ix := 0; ix < g.resX; ix++ {
				if field.Evaluate(implicit.Vec3{X: g.worldX(ix), Y: y, Z: z}) <= 0 {
					row[ix] = 0xff
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

// eachLayer runs fn for each layer index on a bounded worker group and
// reports completion counts through progress.
func eachLayer(total int, progress func(done, total int), fn func(n int) error) error {
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))

	var mu sync.Mutex
	done := 0
	for n := 0; n < total; n++ {
		n := n
		group.Go(func() error {
			if err := fn(n); err != nil {
				return err
			}
			if progress != nil {
				mu.Lock()
				done++
				progress(done, total)
				mu.Unlock()
			}
			return nil
		})
	}
	return group.Wait()
}
