//
// Copyright (c) 2026 Osmose Engineering
//

package ctb

import (
	"fmt"
	"image"
)

const maxRun = 127

// rleEncodeGraymap packs a binarized grayscale image into run pairs.
// Each pair is (0x80 | length, value); runs never cross a row boundary
// and never exceed 127 pixels.
func rleEncodeGraymap(gray *image.Gray) []byte {
	base := gray.Bounds()
	width := base.Dx()
	height := base.Dy()

	rle := make([]byte, 0, width*height/64)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		run := 0
		var value byte
		flush := func() {
			if run > 0 {
				rle = append(rle, 0x80|byte(run), value)
				run = 0
			}
		}
		for x := 0; x < width; x++ {
			pixel := byte(0)
			if row[x] >= 0x80 {
				pixel = 0xff
			}
			if run > 0 && pixel == value && run < maxRun {
				run++
				continue
			}
			flush()
			value = pixel
			run = 1
		}
		flush()
	}
	return rle
}

// rleDecodeGraymap expands run pairs back into a width x height image.
func rleDecodeGraymap(bounds image.Rectangle, rle []byte) (gray *image.Gray, err error) {
	if len(rle)%2 != 0 {
		err = fmt.Errorf("truncated rle stream (%d bytes)", len(rle))
		return
	}

	pix := make([]byte, 0, bounds.Dx()*bounds.Dy())
	for n := 0; n < len(rle); n += 2 {
		code, value := rle[n], rle[n+1]
		if code&0x80 == 0 {
			err = fmt.Errorf("invalid run code 0x%02x at offset %d", code, n)
			return
		}
		run := int(code & 0x7f)
		for i := 0; i < run; i++ {
			pix = append(pix, value)
		}
	}

	if len(pix) != bounds.Dx()*bounds.Dy() {
		err = fmt.Errorf("decoded %d pixels, expected %d", len(pix), bounds.Dx()*bounds.Dy())
		return
	}

	gray = &image.Gray{
		Pix:    pix,
		Stride: bounds.Dx(),
		Rect:   bounds,
	}
	return
}
