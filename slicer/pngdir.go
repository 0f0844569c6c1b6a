//
// Copyright (c) 2026 Osmose Engineering
//

package slicer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

// WriteSliceDir writes each layer of the stack as an 8-bit grayscale
// PNG named slice_%04d.png under dir, creating it if needed.
func WriteSliceDir(dir string, stack *implicit.Stack) error {
	if err := stack.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for n, layer := range stack.Layers {
		path := filepath.Join(dir, fmt.Sprintf("slice_%04d.png", n))
		if err := writePNG(path, layer.Image); err != nil {
			return fmt.Errorf("layer %d: %w", n, err)
		}
	}
	return nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	err = png.Encode(f, img)
	return
}

// LoadSliceDir reads slice_%04d.png files back into a stack, expecting
// one layer per z step of the bounds. Indices must be contiguous from
// zero; a gap is reported as a missing asset.
func LoadSliceDir(dir string, bounds implicit.Bounds, thickness float64) (*implicit.Stack, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("layer thickness %v must be positive", thickness)
	}
	stack, err := LoadSlices(dir, bounds.LayerCount(thickness), thickness)
	if err != nil {
		return nil, err
	}
	stack.Bounds = bounds
	for n := range stack.Layers {
		stack.Layers[n].Z = bounds.ZMin + float64(n)*thickness
	}
	return stack, nil
}

// LoadSlices reads exactly count slice_%04d.png files from dir.
func LoadSlices(dir string, count int, thickness float64) (*implicit.Stack, error) {
	if count < 1 {
		return nil, implicit.ErrEmptyInput
	}
	stack := &implicit.Stack{
		LayerThickness: thickness,
		Layers:         make([]implicit.Layer, count),
	}
	for n := 0; n < count; n++ {
		path := filepath.Join(dir, fmt.Sprintf("slice_%04d.png", n))
		img, err := readGrayPNG(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, implicit.MissingAssetError(path)
			}
			return nil, fmt.Errorf("layer %d: %w", n, err)
		}
		stack.Layers[n] = implicit.Layer{
			Z:     float64(n) * thickness,
			Image: img,
		}
	}
	return stack, nil
}

func readGrayPNG(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if gray, ok := img.(*image.Gray); ok {
		return gray, nil
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray, nil
}
