//
// Copyright (c) 2026 Osmose Engineering
//

// Package ctb implements the zip-container CTB archive: a fixed binary
// header, a cumulative layer offset table, a filename table, and one
// run-length encoded payload per layer.
package ctb

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/go-restruct/restruct"
	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

const (
	headerMagic   = "CTB1"
	headerVersion = 0x0100

	entryHeader    = "header.bin"
	entryOffsets   = "layer_index_table.bin"
	entryFilenames = "layer_filenames.tbl"
	entryPreview   = "preview_images/preview_0.png"

	layerEntryFormat = "layer_images/layer_%04d.pw0Img"
)

type ctbHeader struct {
	Magic          [4]byte // 00: "CTB1"
	Version        uint16  // 04
	Pad0           uint16  // 06
	ResolutionX    uint32  // 08
	ResolutionY    uint32  // 0c
	LayerCount     uint32  // 10
	LayerHeight    float32 // 14: mm
	Exposure       float32 // 18: ms
	BottomExposure float32 // 1c: ms
	BottomCount    uint16  // 20
	Pad1           uint16  // 22
	LiftHeight     float32 // 24: mm
	LiftSpeed      float32 // 28: mm/s
	RetractSpeed   float32 // 2c: mm/s
}

type Formatter struct {
	*pflag.FlagSet

	Exposure       float32
	BottomExposure float32
	BottomCount    int
	LiftHeight     float32
	LiftSpeed      float32
	RetractSpeed   float32
	Preview        string
}

func NewFormatter(suffix string) (formatter *Formatter) {
	flagSet := pflag.NewFlagSet(suffix, pflag.ContinueOnError)
	flagSet.SetInterspersed(false)

	def := implicit.DefaultExposure
	formatter = &Formatter{FlagSet: flagSet}
	formatter.Float32Var(&formatter.Exposure, "exposure", float32(def.LightOnTime), "Layer light-on time in milliseconds")
	formatter.Float32Var(&formatter.BottomExposure, "bottom-exposure", float32(def.BottomOnTime), "Bottom layer light-on time in milliseconds")
	formatter.IntVar(&formatter.BottomCount, "bottom-count", def.BottomLayers, "Number of bottom layers")
	formatter.Float32Var(&formatter.LiftHeight, "lift-height", float32(def.LiftHeight), "Lift height in mm")
	formatter.Float32Var(&formatter.LiftSpeed, "lift-speed", float32(def.LiftSpeed), "Lift speed in mm/s")
	formatter.Float32Var(&formatter.RetractSpeed, "retract-speed", float32(def.RetractSpeed), "Retract speed in mm/s")
	formatter.StringVar(&formatter.Preview, "preview", "", "PNG file to embed as the preview image")

	return
}

func (cf *Formatter) Encode(writer io.Writer, stack *implicit.Stack) (err error) {
	if err = stack.Validate(); err != nil {
		return
	}

	width, height := stack.Size()
	count := len(stack.Layers)

	payloads := make([][]byte, count)
	err = implicit.ForEachLayer(stack, func(n int, layer implicit.Layer) error {
		payloads[n] = rleEncodeGraymap(layer.Image)
		return nil
	})
	if err != nil {
		return
	}

	header := ctbHeader{
		Version:        headerVersion,
		ResolutionX:    uint32(width),
		ResolutionY:    uint32(height),
		LayerCount:     uint32(count),
		LayerHeight:    float32(stack.LayerThickness),
		Exposure:       cf.Exposure,
		BottomExposure: cf.BottomExposure,
		BottomCount:    uint16(cf.BottomCount),
		LiftHeight:     cf.LiftHeight,
		LiftSpeed:      cf.LiftSpeed,
		RetractSpeed:   cf.RetractSpeed,
	}
	copy(header.Magic[:], headerMagic)

	headerData, err := restruct.Pack(binary.LittleEndian, &header)
	if err != nil {
		return
	}

	// Cumulative payload offsets, one extra entry holding the total.
	offsets := make([]byte, 0, 4*(count+1))
	total := uint32(0)
	for _, payload := range payloads {
		offsets = binary.LittleEndian.AppendUint32(offsets, total)
		total += uint32(len(payload))
	}
	offsets = binary.LittleEndian.AppendUint32(offsets, total)

	filenames := make([]byte, 0, 32*count)
	for n := range payloads {
		filenames = append(filenames, fmt.Sprintf(layerEntryFormat, n)...)
		filenames = append(filenames, 0)
	}

	archive := zip.NewWriter(writer)
	defer func() {
		if cerr := archive.Close(); err == nil {
			err = cerr
		}
	}()

	store := func(name string, data []byte) error {
		w, werr := archive.Create(name)
		if werr != nil {
			return werr
		}
		_, werr = w.Write(data)
		return werr
	}

	if err = store(entryHeader, headerData); err != nil {
		return
	}
	if err = store(entryOffsets, offsets); err != nil {
		return
	}
	if err = store(entryFilenames, filenames); err != nil {
		return
	}

	if cf.Preview != "" {
		var preview []byte
		preview, err = os.ReadFile(cf.Preview)
		if err != nil {
			return
		}
		if err = store(entryPreview, preview); err != nil {
			return
		}
	}

	for n, payload := range payloads {
		if err = store(fmt.Sprintf(layerEntryFormat, n), payload); err != nil {
			return
		}
	}

	return
}

func (cf *Formatter) Decode(reader implicit.Reader, size int64) (stack *implicit.Stack, err error) {
	archive, err := zip.NewReader(reader, size)
	if err != nil {
		return
	}

	fileMap := make(map[string]*zip.File, len(archive.File))
	for _, file := range archive.File {
		fileMap[file.Name] = file
	}

	extract := func(name string) (data []byte, err error) {
		file, found := fileMap[name]
		if !found {
			err = fmt.Errorf("archive missing entry '%s'", name)
			return
		}
		rc, err := file.Open()
		if err != nil {
			return
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return
	}

	headerData, err := extract(entryHeader)
	if err != nil {
		return
	}

	var header ctbHeader
	if err = restruct.Unpack(headerData, binary.LittleEndian, &header); err != nil {
		return
	}
	if string(header.Magic[:]) != headerMagic {
		err = fmt.Errorf("invalid header magic %q", header.Magic)
		return
	}
	if header.Version != headerVersion {
		err = fmt.Errorf("unsupported version 0x%04x", header.Version)
		return
	}

	offsetData, err := extract(entryOffsets)
	if err != nil {
		return
	}
	count := int(header.LayerCount)
	if len(offsetData) != 4*(count+1) {
		err = fmt.Errorf("offset table is %d bytes, expected %d", len(offsetData), 4*(count+1))
		return
	}

	bounds := image.Rect(0, 0, int(header.ResolutionX), int(header.ResolutionY))
	layers := make([]implicit.Layer, count)
	for n := 0; n < count; n++ {
		var payload []byte
		payload, err = extract(fmt.Sprintf(layerEntryFormat, n))
		if err != nil {
			return
		}

		begin := binary.LittleEndian.Uint32(offsetData[4*n:])
		end := binary.LittleEndian.Uint32(offsetData[4*(n+1):])
		if uint32(len(payload)) != end-begin {
			err = fmt.Errorf("layer %d payload is %d bytes, offset table says %d", n, len(payload), end-begin)
			return
		}

		var gray *image.Gray
		gray, err = rleDecodeGraymap(bounds, payload)
		if err != nil {
			err = fmt.Errorf("layer %d: %w", n, err)
			return
		}
		layers[n] = implicit.Layer{
			Z:     float64(n) * float64(header.LayerHeight),
			Image: gray,
		}
	}

	stack = &implicit.Stack{
		LayerThickness: float64(header.LayerHeight),
		Layers:         layers,
	}
	return
}
