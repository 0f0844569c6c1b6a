//
// Copyright (c) 2026 Osmose Engineering
//

// Package pm7m implements the Anycubic photon workshop archive: a zip
// of JSON manifests plus one .pw0Img run-length payload per layer.
package pm7m

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/image/draw"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

const (
	entryResins     = "anycubic_photon_resins.pwsp"
	entryController = "layers_controller.conf"
	entrySoftware   = "software_info.conf"
	entryLCD        = "lcd_function.json"
	entryPrintInfo  = "print_info.json"
	entryScene      = "scene.slice"
	entryPreview    = "preview_images/preview_0.png"

	layerEntryFormat = "layer_images/layer_%04d.pw0Img"

	previewSize = 128
)

// templateEntries are copied verbatim from a donor archive when one is
// supplied, in place of the generated defaults.
var templateEntries = []string{
	entryResins,
	entryController,
	entrySoftware,
	entryLCD,
}

type printInfo struct {
	Name        string  `json:"name"`
	LayerCount  int     `json:"layer_count"`
	PixelWidth  int     `json:"pixel_width"`
	PixelHeight int     `json:"pixel_height"`
	LayerHeight float64 `json:"layer_height"`
}

type sceneSlice struct {
	LayerCount  int      `json:"layerCount"`
	PixelWidth  int      `json:"pixelWidth"`
	PixelHeight int      `json:"pixelHeight"`
	Layers      []string `json:"layers"`
}

type layerPara struct {
	ExposureTime   float64 `json:"exposure_time"`
	LayerIndex     int     `json:"layer_index"`
	LayerMinHeight float64 `json:"layer_minheight"`
	LayerThickness float64 `json:"layer_thickness"`
	ZupHeight      float64 `json:"zup_height"`
	ZupSpeed       float64 `json:"zup_speed"`
}

type layersController struct {
	Count int         `json:"count"`
	Paras []layerPara `json:"paras"`
}

type Formatter struct {
	*pflag.FlagSet

	Name           string
	Exposure       float64
	BottomExposure float64
	BottomCount    int
	LiftHeight     float64
	LiftSpeed      float64
	Template       string
}

func NewFormatter(suffix string) (formatter *Formatter) {
	flagSet := pflag.NewFlagSet(suffix, pflag.ContinueOnError)
	flagSet.SetInterspersed(false)

	def := implicit.DefaultExposure
	formatter = &Formatter{FlagSet: flagSet}
	formatter.StringVar(&formatter.Name, "name", "print", "Job name recorded in print_info.json")
	formatter.Float64Var(&formatter.Exposure, "exposure", def.LightOnTime, "Layer light-on time in milliseconds")
	formatter.Float64Var(&formatter.BottomExposure, "bottom-exposure", def.BottomOnTime, "Bottom layer light-on time in milliseconds")
	formatter.IntVar(&formatter.BottomCount, "bottom-count", def.BottomLayers, "Number of bottom layers")
	formatter.Float64Var(&formatter.LiftHeight, "lift-height", def.LiftHeight, "Lift height in mm")
	formatter.Float64Var(&formatter.LiftSpeed, "lift-speed", def.LiftSpeed, "Lift speed in mm/s")
	formatter.StringVar(&formatter.Template, "template", "", "Donor archive supplying resin and machine metadata")

	return
}

// loadTemplate pulls metadata entries and the first preview image out
// of a donor archive.
func loadTemplate(path string) (entries map[string][]byte, preview []byte, err error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return
	}
	defer archive.Close()

	read := func(file *zip.File) (data []byte, err error) {
		rc, err := file.Open()
		if err != nil {
			return
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return
	}

	entries = make(map[string][]byte)
	for _, file := range archive.File {
		for _, name := range templateEntries {
			if file.Name == name {
				entries[name], err = read(file)
				if err != nil {
					return
				}
			}
		}
		if preview == nil && strings.HasPrefix(file.Name, "preview_images/") && strings.HasSuffix(file.Name, ".png") {
			preview, err = read(file)
			if err != nil {
				return
			}
		}
	}
	return
}

// makePreview downsamples the first layer image to a small PNG.
func makePreview(gray *image.Gray) (data []byte, err error) {
	scaled := image.NewGray(image.Rect(0, 0, previewSize, previewSize))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err = png.Encode(&buf, scaled); err != nil {
		return
	}
	data = buf.Bytes()
	return
}

func (pf *Formatter) controllerJSON(count int, thickness float64) ([]byte, error) {
	controller := layersController{
		Count: count,
		Paras: make([]layerPara, count),
	}
	for n := 0; n < count; n++ {
		exposure := pf.Exposure
		if n < pf.BottomCount {
			exposure = pf.BottomExposure
		}
		controller.Paras[n] = layerPara{
			ExposureTime:   exposure,
			LayerIndex:     n,
			LayerMinHeight: float64(n) * thickness,
			LayerThickness: thickness,
			ZupHeight:      pf.LiftHeight,
			ZupSpeed:       pf.LiftSpeed,
		}
	}
	return json.MarshalIndent(&controller, "", "  ")
}

func (pf *Formatter) Encode(writer io.Writer, stack *implicit.Stack) (err error) {
	if err = stack.Validate(); err != nil {
		return
	}

	width, height := stack.Size()
	count := len(stack.Layers)

	template := map[string][]byte{}
	var templatePreview []byte
	if pf.Template != "" {
		template, templatePreview, err = loadTemplate(pf.Template)
		if err != nil {
			return
		}
	}
	archive := zip.NewWriter(writer)
	defer func() {
		if cerr := archive.Close(); err == nil {
			err = cerr
		}
	}()

	store := func(name string, data []byte) error {
		w, werr := archive.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if werr != nil {
			return werr
		}
		_, werr = w.Write(data)
		return werr
	}

	if data, found := template[entryResins]; found {
		err = store(entryResins, data)
	} else {
		err = store(entryResins, []byte("{}"))
	}
	if err != nil {
		return
	}

	if data, found := template[entryController]; found {
		err = store(entryController, data)
	} else {
		var data []byte
		data, err = pf.controllerJSON(count, stack.LayerThickness)
		if err != nil {
			return
		}
		err = store(entryController, data)
	}
	if err != nil {
		return
	}

	for _, name := range []string{entrySoftware, entryLCD} {
		if data, found := template[name]; found {
			if err = store(name, data); err != nil {
				return
			}
		}
	}

	preview := templatePreview
	if preview == nil {
		preview, err = makePreview(stack.Layers[0].Image)
		if err != nil {
			return
		}
	}
	if err = store(entryPreview, preview); err != nil {
		return
	}

	info := printInfo{
		Name:        pf.Name,
		LayerCount:  count,
		PixelWidth:  width,
		PixelHeight: height,
		LayerHeight: stack.LayerThickness,
	}
	infoData, err := json.MarshalIndent(&info, "", "  ")
	if err != nil {
		return
	}
	if err = store(entryPrintInfo, infoData); err != nil {
		return
	}

	payloads := make([][]byte, count)
	err = implicit.ForEachLayer(stack, func(n int, layer implicit.Layer) (err error) {
		payloads[n], err = pw0Encode(layer.Image)
		return
	})
	if err != nil {
		return
	}

	scene := sceneSlice{
		LayerCount:  count,
		PixelWidth:  width,
		PixelHeight: height,
		Layers:      make([]string, count),
	}
	for n, payload := range payloads {
		name := fmt.Sprintf(layerEntryFormat, n)
		if err = store(name, payload); err != nil {
			return
		}
		scene.Layers[n] = name
	}

	sceneData, err := json.MarshalIndent(&scene, "", "  ")
	if err != nil {
		return
	}
	err = store(entryScene, sceneData)
	return
}

func (pf *Formatter) Decode(reader implicit.Reader, size int64) (stack *implicit.Stack, err error) {
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

	infoData, err := extract(entryPrintInfo)
	if err != nil {
		return
	}
	var info printInfo
	if err = json.Unmarshal(infoData, &info); err != nil {
		return
	}

	sceneData, err := extract(entryScene)
	if err != nil {
		return
	}
	var scene sceneSlice
	if err = json.Unmarshal(sceneData, &scene); err != nil {
		return
	}
	if scene.LayerCount != len(scene.Layers) {
		err = fmt.Errorf("scene lists %d layers, count says %d", len(scene.Layers), scene.LayerCount)
		return
	}

	layers := make([]implicit.Layer, len(scene.Layers))
	for n, name := range scene.Layers {
		var payload []byte
		payload, err = extract(name)
		if err != nil {
			return
		}
		var gray *image.Gray
		gray, err = pw0Decode(payload)
		if err != nil {
			err = fmt.Errorf("layer %d: %w", n, err)
			return
		}
		layers[n] = implicit.Layer{
			Z:     float64(n) * info.LayerHeight,
			Image: gray,
		}
	}

	stack = &implicit.Stack{
		LayerThickness: info.LayerHeight,
		Layers:         layers,
	}
	return
}
