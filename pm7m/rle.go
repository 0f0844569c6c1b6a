//
// Copyright (c) 2026 Osmose Engineering
//

package pm7m

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/go-restruct/restruct"
)

const maxRun = 255

// pw0Header prefixes every layer image payload.
type pw0Header struct {
	Width   uint16 // 00: pixels
	Height  uint16 // 02: pixels
	XOffset uint16 // 04
	YOffset uint16 // 06
}

// pw0Encode packs a binarized grayscale image into a .pw0Img payload:
// the 8-byte header followed by (count, value) byte pairs over the
// row-major pixel stream. Runs may cross row boundaries but never
// exceed 255 pixels.
func pw0Encode(gray *image.Gray) (data []byte, err error) {
	base := gray.Bounds()
	width := base.Dx()
	height := base.Dy()

	header := pw0Header{
		Width:  uint16(width),
		Height: uint16(height),
	}
	data, err = restruct.Pack(binary.LittleEndian, &header)
	if err != nil {
		return
	}

	run := 0
	var value byte
	flush := func() {
		if run > 0 {
			data = append(data, byte(run), value)
			run = 0
		}
	}
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
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
	}
	flush()

	return
}

// pw0Decode expands a .pw0Img payload back into a grayscale image.
func pw0Decode(data []byte) (gray *image.Gray, err error) {
	var header pw0Header
	size, err := restruct.SizeOf(&header)
	if err != nil {
		return
	}
	if len(data) < size {
		err = fmt.Errorf("payload too short for header (%d bytes)", len(data))
		return
	}
	if err = restruct.Unpack(data[:size], binary.LittleEndian, &header); err != nil {
		return
	}

	rle := data[size:]
	if len(rle)%2 != 0 {
		err = fmt.Errorf("truncated rle stream (%d bytes)", len(rle))
		return
	}

	want := int(header.Width) * int(header.Height)
	pix := make([]byte, 0, want)
	for n := 0; n < len(rle); n += 2 {
		count, value := int(rle[n]), rle[n+1]
		for i := 0; i < count; i++ {
			pix = append(pix, value)
		}
	}
	if len(pix) != want {
		err = fmt.Errorf("decoded %d pixels, expected %d", len(pix), want)
		return
	}

	gray = &image.Gray{
		Pix:    pix,
		Stride: int(header.Width),
		Rect:   image.Rect(0, 0, int(header.Width), int(header.Height)),
	}
	return
}
