//
// Copyright (c) 2026 Osmose Engineering
//

package pm7m

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

func TestPW0RoundTrip(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 64, 16))

	// A solid band spanning several rows, so runs cross row boundaries
	// and exceed the 255 cap
	for y := 3; y < 12; y++ {
		for x := 0; x < 64; x++ {
			gray.Pix[y*gray.Stride+x] = 0xff
		}
	}

	data, err := pw0Encode(gray)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := pw0Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := decoded.Bounds(); got != gray.Bounds() {
		t.Fatalf("bounds: expected %v, got %v", gray.Bounds(), got)
	}
	for n := range gray.Pix {
		if gray.Pix[n] != decoded.Pix[n] {
			t.Fatalf("pixel %d: expected %d, got %d", n, gray.Pix[n], decoded.Pix[n])
		}
	}
}

func TestPW0Header(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 320, 200))
	data, err := pw0Encode(gray)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if len(data) < 8 {
		t.Fatalf("payload too short: %d bytes", len(data))
	}
	if w := int(data[0]) | int(data[1])<<8; w != 320 {
		t.Errorf("width: expected 320, got %d", w)
	}
	if h := int(data[2]) | int(data[3])<<8; h != 200 {
		t.Errorf("height: expected 200, got %d", h)
	}

	// Run cap holds even on an all-background image
	for n := 8; n < len(data); n += 2 {
		if data[n] == 0 {
			t.Fatalf("zero-length run at offset %d", n)
		}
	}
}

func testStack() *implicit.Stack {
	layers := make([]implicit.Layer, 8)
	for n := range layers {
		gray := image.NewGray(image.Rect(0, 0, 40, 30))
		for y := 10; y < 20; y++ {
			for x := n; x < 30+n; x++ {
				gray.Pix[y*gray.Stride+x] = 0xff
			}
		}
		layers[n] = implicit.Layer{Z: float64(n) * 0.05, Image: gray}
	}
	return &implicit.Stack{LayerThickness: 0.05, Layers: layers}
}

func readEntry(t *testing.T, archive *zip.Reader, name string) []byte {
	t.Helper()
	for _, file := range archive.File {
		if file.Name == name {
			rc, err := file.Open()
			if err != nil {
				t.Fatalf("open %s: %v", name, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			return data
		}
	}
	t.Fatalf("entry %s not found", name)
	return nil
}

func TestEncodeArchive(t *testing.T) {
	formatter := NewFormatter(".pm7m")
	if err := formatter.Parse([]string{"--name", "widget", "--bottom-count", "3", "--bottom-exposure", "9000"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	if err := formatter.Encode(&buf, testStack()); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	archive, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}

	// Every entry is stored uncompressed
	for _, file := range archive.File {
		if file.Method != zip.Store {
			t.Errorf("entry %s: method %d, expected store", file.Name, file.Method)
		}
	}

	if resins := readEntry(t, archive, "anycubic_photon_resins.pwsp"); string(resins) != "{}" {
		t.Errorf("resins: expected '{}', got '%s'", resins)
	}

	var info printInfo
	if err := json.Unmarshal(readEntry(t, archive, "print_info.json"), &info); err != nil {
		t.Fatalf("print_info.json: %v", err)
	}
	if info.Name != "widget" {
		t.Errorf("name: expected 'widget', got '%s'", info.Name)
	}
	if info.LayerCount != 8 || info.PixelWidth != 40 || info.PixelHeight != 30 {
		t.Errorf("print info: got %+v", info)
	}
	if info.LayerHeight != 0.05 {
		t.Errorf("layer height: expected 0.05, got %v", info.LayerHeight)
	}

	var scene sceneSlice
	if err := json.Unmarshal(readEntry(t, archive, "scene.slice"), &scene); err != nil {
		t.Fatalf("scene.slice: %v", err)
	}
	if scene.LayerCount != 8 || len(scene.Layers) != 8 {
		t.Fatalf("scene: got %+v", scene)
	}
	if scene.Layers[0] != "layer_images/layer_0000.pw0Img" {
		t.Errorf("first layer name: got '%s'", scene.Layers[0])
	}

	var controller layersController
	if err := json.Unmarshal(readEntry(t, archive, "layers_controller.conf"), &controller); err != nil {
		t.Fatalf("layers_controller.conf: %v", err)
	}
	if controller.Count != 8 || len(controller.Paras) != 8 {
		t.Fatalf("controller: count %d, %d paras", controller.Count, len(controller.Paras))
	}
	for n, para := range controller.Paras {
		expected := formatter.Exposure
		if n < 3 {
			expected = 9000
		}
		if para.ExposureTime != expected {
			t.Errorf("layer %d exposure: expected %v, got %v", n, expected, para.ExposureTime)
		}
		if para.LayerIndex != n {
			t.Errorf("layer %d index: got %d", n, para.LayerIndex)
		}
		if para.LayerThickness != 0.05 {
			t.Errorf("layer %d thickness: got %v", n, para.LayerThickness)
		}
	}

	preview, err := png.Decode(bytes.NewReader(readEntry(t, archive, "preview_images/preview_0.png")))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if size := preview.Bounds().Size(); size.X != 128 || size.Y != 128 {
		t.Errorf("preview size: expected 128x128, got %v", size)
	}
}

func TestEncodeDecode(t *testing.T) {
	stack := testStack()

	var buf bytes.Buffer
	formatter := NewFormatter(".pm7m")
	if err := formatter.Encode(&buf, stack); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := formatter.Decode(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Layers) != len(stack.Layers) {
		t.Fatalf("expected %d layers, got %d", len(stack.Layers), len(decoded.Layers))
	}
	if decoded.LayerThickness != stack.LayerThickness {
		t.Errorf("thickness: expected %v, got %v", stack.LayerThickness, decoded.LayerThickness)
	}

	for n := range stack.Layers {
		want := stack.Layers[n].Image.Pix
		got := decoded.Layers[n].Image.Pix
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("layer %d pixel %d: expected %d, got %d", n, i, want[i], got[i])
			}
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(".pm7m").Encode(&buf, &implicit.Stack{LayerThickness: 0.05})
	if !errors.Is(err, implicit.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
