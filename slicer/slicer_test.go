//
// Copyright (c) 2026 Osmose Engineering
//

package slicer

import (
	"testing"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

func testBounds(r float64) implicit.Bounds {
	return implicit.Bounds{
		XMin: -r, XMax: r,
		YMin: -r, YMax: r,
		ZMin: -r, ZMax: r,
	}
}

func TestSliceLayerCount(t *testing.T) {
	sphere, _ := implicit.NewSphere(implicit.Vec3{}, 10.0)

	stack, err := Slice(sphere, testBounds(20), Options{
		ResolutionX:    8,
		ResolutionY:    8,
		LayerThickness: 1.0,
	})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}

	// 40mm of z at 1.0mm steps gives 41 slabs, both faces included
	if len(stack.Layers) != 41 {
		t.Fatalf("expected 41 layers, got %d", len(stack.Layers))
	}
	if z := stack.Layers[0].Z; z != -20.0 {
		t.Errorf("first layer z: expected -20, got %v", z)
	}
	if z := stack.Layers[40].Z; z != 20.0 {
		t.Errorf("last layer z: expected 20, got %v", z)
	}
}

func TestSliceRejectsTinyResolution(t *testing.T) {
	sphere, _ := implicit.NewSphere(implicit.Vec3{}, 1.0)

	for _, opts := range []Options{
		{ResolutionX: 1, ResolutionY: 8, LayerThickness: 1},
		{ResolutionX: 8, ResolutionY: 1, LayerThickness: 1},
		{ResolutionX: 0, ResolutionY: 0, LayerThickness: 1},
	} {
		if _, err := Slice(sphere, testBounds(2), opts); err == nil {
			t.Fatalf("expected error for resolution %dx%d", opts.ResolutionX, opts.ResolutionY)
		}
	}
}

func TestSlicePixelMapping(t *testing.T) {
	// A small sphere at the center of a 3x3 grid over [-1,1]:
	// pixel centers are at -1, 0, 1 on both axes, so only the middle
	// pixel lands inside.
	sphere, _ := implicit.NewSphere(implicit.Vec3{}, 0.5)

	stack, err := Slice(sphere, implicit.Bounds{
		XMin: -1, XMax: 1, YMin: -1, YMax: 1, ZMin: 0, ZMax: 0,
	}, Options{ResolutionX: 3, ResolutionY: 3, LayerThickness: 1.0})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if len(stack.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(stack.Layers))
	}

	img := stack.Layers[0].Image
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := uint8(0)
			if x == 1 && y == 1 {
				want = 0xff
			}
			if got := img.GrayAt(x, y).Y; got != want {
				t.Errorf("pixel (%d,%d): expected %d, got %d", x, y, want, got)
			}
		}
	}
}

func TestSliceOrientation(t *testing.T) {
	// A half-space solid only where y > 0 must fill the TOP image rows:
	// row 0 maps to ymax.
	upper := fieldFunc(func(p implicit.Vec3) float64 { return -p.Y })

	stack, err := Slice(upper, implicit.Bounds{
		XMin: -1, XMax: 1, YMin: -1, YMax: 1, ZMin: 0, ZMax: 0,
	}, Options{ResolutionX: 3, ResolutionY: 3, LayerThickness: 1.0})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}

	img := stack.Layers[0].Image
	if img.GrayAt(1, 0).Y != 0xff {
		t.Errorf("top row should be solid (world y = +1)")
	}
	if img.GrayAt(1, 2).Y != 0 {
		t.Errorf("bottom row should be empty (world y = -1)")
	}
}

type fieldFunc func(implicit.Vec3) float64

func (f fieldFunc) Evaluate(p implicit.Vec3) float64 { return f(p) }

func TestSliceProgress(t *testing.T) {
	sphere, _ := implicit.NewSphere(implicit.Vec3{}, 1.0)

	var calls int
	var last int
	_, err := Slice(sphere, testBounds(2), Options{
		ResolutionX:    4,
		ResolutionY:    4,
		LayerThickness: 1.0,
		Progress: func(done, total int) {
			calls++
			last = total
			if done < 1 || done > total {
				t.Errorf("done %d out of range [1,%d]", done, total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if calls != 5 || last != 5 {
		t.Fatalf("expected 5 progress calls for 5 layers, got %d (total %d)", calls, last)
	}
}
