//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Layer is one resolved raster slice: its Z height and a row-major 8-bit
// occupancy image (255 foreground, 0 background).
type Layer struct {
	Z     float64
	Image *image.Gray
}

// Stack is a full slicing run: every layer in index-ascending order from
// ZMin upward, plus the geometry it was sampled from. Layers are produced
// fresh per run and borrowed (never mutated) by the archive codecs.
type Stack struct {
	Bounds         Bounds
	LayerThickness float64
	Layers         []Layer
}

// Size returns the pixel resolution shared by every layer.
func (s *Stack) Size() (x, y int) {
	if len(s.Layers) == 0 || s.Layers[0].Image == nil {
		return 0, 0
	}
	b := s.Layers[0].Image.Bounds().Size()
	return b.X, b.Y
}

// Validate checks the invariants the codecs rely on: at least one layer,
// and an image present on every one of them.
func (s *Stack) Validate() error {
	if len(s.Layers) == 0 {
		return ErrEmptyInput
	}
	for i, layer := range s.Layers {
		if layer.Image == nil {
			return MissingAssetError(fmt.Sprintf("layer %d image", i))
		}
	}
	return nil
}

// ForEachLayer runs fn over every layer with a bounded worker pool. Layer
// indices are disjoint, so fn may write into per-index result slots
// without further synchronization.
func ForEachLayer(s *Stack, fn func(n int, layer Layer) error) error {
	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for n := range s.Layers {
		n := n
		group.Go(func() error {
			return fn(n, s.Layers[n])
		})
	}
	return group.Wait()
}
