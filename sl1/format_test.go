//
// Copyright (c) 2026 Osmose Engineering
//

package sl1

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"image"
	"io"
	"strings"
	"testing"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

func testStack() *implicit.Stack {
	layers := make([]implicit.Layer, 6)
	for n := range layers {
		gray := image.NewGray(image.Rect(0, 0, 20, 20))
		for x := 5; x < 15; x++ {
			gray.Pix[(5+n)*gray.Stride+x] = 0xff
		}
		layers[n] = implicit.Layer{Z: float64(n) * 0.05, Image: gray}
	}
	return &implicit.Stack{LayerThickness: 0.05, Layers: layers}
}

func TestEncodeDecode(t *testing.T) {
	stack := testStack()

	var buf bytes.Buffer
	formatter := NewFormatter(".sl1")
	if err := formatter.Encode(&buf, stack); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := formatter.Decode(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Layers) != 6 {
		t.Fatalf("expected 6 layers, got %d", len(decoded.Layers))
	}
	if decoded.LayerThickness != 0.05 {
		t.Errorf("thickness: expected 0.05, got %v", decoded.LayerThickness)
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

func TestConfigContents(t *testing.T) {
	formatter := NewFormatter(".sl1")
	if err := formatter.Parse([]string{"--job-name", "widget", "--exposure", "7500", "--bottom-count", "2"}); err != nil {
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

	items := map[string]string{}
	for _, file := range archive.File {
		if file.Name != "config.ini" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open config.ini: %v", err)
		}
		scanner := bufio.NewScanner(rc)
		for scanner.Scan() {
			fields := strings.SplitN(scanner.Text(), " = ", 2)
			if len(fields) == 2 {
				items[fields[0]] = fields[1]
			}
		}
		rc.Close()
	}
	if len(items) == 0 {
		t.Fatal("config.ini not found")
	}

	if items["jobDir"] != "widget" {
		t.Errorf("jobDir: expected widget, got %s", items["jobDir"])
	}
	if items["expTime"] != "7.5" {
		t.Errorf("expTime: expected 7.5, got %s", items["expTime"])
	}
	if items["numFast"] != "6" {
		t.Errorf("numFast: expected 6, got %s", items["numFast"])
	}
	if items["numFade"] != "2" {
		t.Errorf("numFade: expected 2, got %s", items["numFade"])
	}

	// Layer entries follow the job name
	found := false
	for _, file := range archive.File {
		if file.Name == "widget00005.png" {
			found = true
		}
	}
	if !found {
		t.Error("layer entry widget00005.png not found")
	}
}

func TestDecodeMissingLayer(t *testing.T) {
	stack := testStack()

	var buf bytes.Buffer
	formatter := NewFormatter(".sl1")
	if err := formatter.Encode(&buf, stack); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Rewrite the archive without layer 3
	source, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	var pruned bytes.Buffer
	archive := zip.NewWriter(&pruned)
	for _, file := range source.File {
		if file.Name == "print00003.png" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open %s: %v", file.Name, err)
		}
		w, err := archive.Create(file.Name)
		if err != nil {
			t.Fatalf("create %s: %v", file.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			t.Fatalf("copy %s: %v", file.Name, err)
		}
		rc.Close()
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = formatter.Decode(bytes.NewReader(pruned.Bytes()), int64(pruned.Len()))
	var missing implicit.MissingAssetError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingAssetError, got %v", err)
	}
}

func TestDecodeNoConfig(t *testing.T) {
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	if err := archive.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := NewFormatter(".sl1").Decode(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	var malformed implicit.MalformedDocumentError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedDocumentError, got %v", err)
	}
}
