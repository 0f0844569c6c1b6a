//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// stubFormatter writes a fixed marker and decodes it back into a
// single-layer stack.
type stubFormatter struct {
	*pflag.FlagSet

	Marker string
}

func newStubFormatter(suffix string) Formatter {
	flagSet := pflag.NewFlagSet(suffix, pflag.ContinueOnError)
	flagSet.SetInterspersed(false)

	formatter := &stubFormatter{FlagSet: flagSet}
	formatter.StringVar(&formatter.Marker, "marker", "stub", "Marker text")
	return formatter
}

func (sf *stubFormatter) Encode(writer io.Writer, stack *Stack) (err error) {
	if err = stack.Validate(); err != nil {
		return
	}
	_, err = writer.Write([]byte(sf.Marker))
	return
}

func (sf *stubFormatter) Decode(reader Reader, size int64) (stack *Stack, err error) {
	data := make([]byte, size)
	if _, err = reader.ReadAt(data, 0); err != nil {
		return
	}
	if string(data) != sf.Marker {
		err = MalformedDocumentError("marker mismatch")
		return
	}
	stack = &Stack{
		LayerThickness: 0.05,
		Layers:         []Layer{{Image: image.NewGray(image.Rect(0, 0, 1, 1))}},
	}
	return
}

func TestNewFormatSelectsBySuffix(t *testing.T) {
	RegisterFormatter(".stubfmt", newStubFormatter)

	format, err := NewFormat("part.stubfmt", []string{"--marker", "hello"})
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}
	if format.Suffix != ".stubfmt" {
		t.Errorf("suffix: expected .stubfmt, got %s", format.Suffix)
	}
	if marker := format.Formatter.(*stubFormatter).Marker; marker != "hello" {
		t.Errorf("marker: expected hello, got %s", marker)
	}
}

func TestNewFormatUnknownSuffix(t *testing.T) {
	_, err := NewFormat("part.wat", nil)
	if err == nil || !strings.Contains(err.Error(), "extension unknown") {
		t.Fatalf("expected unknown extension error, got %v", err)
	}
}

func TestWriteStackReadStack(t *testing.T) {
	RegisterFormatter(".stubfmt", newStubFormatter)

	path := filepath.Join(t.TempDir(), "part.stubfmt")
	format, err := NewFormat(path, nil)
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}

	stack := &Stack{
		LayerThickness: 0.05,
		Layers:         []Layer{{Image: image.NewGray(image.Rect(0, 0, 1, 1))}},
	}
	if err := format.WriteStack(stack); err != nil {
		t.Fatalf("WriteStack: %v", err)
	}

	decoded, err := format.ReadStack()
	if err != nil {
		t.Fatalf("ReadStack: %v", err)
	}
	if len(decoded.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(decoded.Layers))
	}
}

func TestWriteStackLeavesNoPartialFile(t *testing.T) {
	RegisterFormatter(".stubfmt", newStubFormatter)

	dir := t.TempDir()
	path := filepath.Join(dir, "part.stubfmt")
	format, err := NewFormat(path, nil)
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}

	// Validate fails on an empty stack, so nothing may appear at path
	// and the temporary file must be cleaned up.
	if err := format.WriteStack(&Stack{}); err == nil {
		t.Fatal("expected encode failure")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty directory, found %s", entries[0].Name())
	}
}
