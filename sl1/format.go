//
// Copyright (c) 2026 Osmose Engineering
//

// Package sl1 implements the PrusaSlicer SL1 archive: a zip holding a
// config.ini of "key = value" lines and one grayscale PNG per layer.
package sl1

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

const configEntry = "config.ini"

type Formatter struct {
	*pflag.FlagSet

	JobName        string
	Exposure       float64
	BottomExposure float64
	BottomCount    int
}

func NewFormatter(suffix string) (formatter *Formatter) {
	flagSet := pflag.NewFlagSet(suffix, pflag.ContinueOnError)
	flagSet.SetInterspersed(false)

	def := implicit.DefaultExposure
	formatter = &Formatter{FlagSet: flagSet}
	formatter.StringVar(&formatter.JobName, "job-name", "print", "Job directory prefix inside the archive")
	formatter.Float64Var(&formatter.Exposure, "exposure", def.LightOnTime, "Layer light-on time in milliseconds")
	formatter.Float64Var(&formatter.BottomExposure, "bottom-exposure", def.BottomOnTime, "Bottom layer light-on time in milliseconds")
	formatter.IntVar(&formatter.BottomCount, "bottom-count", def.BottomLayers, "Number of bottom layers")

	return
}

// config.ini times are in seconds.
func (sf *Formatter) configINI(count int, thickness float64) []byte {
	expTime := sf.Exposure / 1000
	expTimeFirst := sf.BottomExposure / 1000
	printTime := expTimeFirst*float64(sf.BottomCount) + expTime*float64(count-sf.BottomCount)

	var buf bytes.Buffer
	write := func(key, value string) {
		fmt.Fprintf(&buf, "%s = %s\n", key, value)
	}
	write("jobDir", sf.JobName)
	write("expTime", strconv.FormatFloat(expTime, 'f', -1, 64))
	write("expTimeFirst", strconv.FormatFloat(expTimeFirst, 'f', -1, 64))
	write("layerHeight", strconv.FormatFloat(thickness, 'f', -1, 64))
	write("numFade", strconv.Itoa(sf.BottomCount))
	write("numFast", strconv.Itoa(count))
	write("numSlow", "0")
	write("printTime", strconv.FormatFloat(printTime, 'f', -1, 64))
	write("usedMaterial", "0")
	return buf.Bytes()
}

func (sf *Formatter) Encode(writer io.Writer, stack *implicit.Stack) (err error) {
	if err = stack.Validate(); err != nil {
		return
	}

	archive := zip.NewWriter(writer)
	defer func() {
		if cerr := archive.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := archive.Create(configEntry)
	if err != nil {
		return
	}
	if _, err = w.Write(sf.configINI(len(stack.Layers), stack.LayerThickness)); err != nil {
		return
	}

	for n, layer := range stack.Layers {
		if w, err = archive.Create(fmt.Sprintf("%s%05d.png", sf.JobName, n)); err != nil {
			return
		}
		if err = png.Encode(w, layer.Image); err != nil {
			return
		}
	}

	return
}

func parseConfig(reader io.Reader) (items map[string]string, err error) {
	items = make(map[string]string)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " = ", 2)
		if len(fields) != 2 {
			err = implicit.MalformedDocumentError(fmt.Sprintf("config.ini: bad line '%s'", line))
			return
		}
		items[fields[0]] = fields[1]
	}
	err = scanner.Err()
	return
}

func configFloat(items map[string]string, key string) (value float64, err error) {
	item, found := items[key]
	if !found {
		err = implicit.MalformedDocumentError(fmt.Sprintf("config.ini: parameter '%s' missing", key))
		return
	}
	value, err = strconv.ParseFloat(item, 64)
	if err != nil {
		err = implicit.MalformedDocumentError(fmt.Sprintf("config.ini: parameter '%s' invalid", key))
	}
	return
}

func (sf *Formatter) Decode(reader implicit.Reader, size int64) (stack *implicit.Stack, err error) {
	archive, err := zip.NewReader(reader, size)
	if err != nil {
		return
	}

	fileMap := make(map[string]*zip.File, len(archive.File))
	for _, file := range archive.File {
		fileMap[file.Name] = file
	}

	cfg, found := fileMap[configEntry]
	if !found {
		err = implicit.MalformedDocumentError("config.ini not found in archive")
		return
	}
	rc, err := cfg.Open()
	if err != nil {
		return
	}
	items, err := parseConfig(rc)
	rc.Close()
	if err != nil {
		return
	}

	jobDir, found := items["jobDir"]
	if !found {
		err = implicit.MalformedDocumentError("config.ini: parameter 'jobDir' missing")
		return
	}
	count, err := configFloat(items, "numFast")
	if err != nil {
		return
	}
	thickness, err := configFloat(items, "layerHeight")
	if err != nil {
		return
	}

	layers := make([]implicit.Layer, int(count))
	for n := range layers {
		name := fmt.Sprintf("%s%05d.png", jobDir, n)
		file, found := fileMap[name]
		if !found {
			err = implicit.MissingAssetError(name)
			return
		}
		var rc io.ReadCloser
		if rc, err = file.Open(); err != nil {
			return
		}
		var img image.Image
		img, err = png.Decode(rc)
		rc.Close()
		if err != nil {
			err = fmt.Errorf("layer %d: %w", n, err)
			return
		}
		gray, ok := img.(*image.Gray)
		if !ok {
			gray = image.NewGray(img.Bounds())
			base := img.Bounds()
			for y := base.Min.Y; y < base.Max.Y; y++ {
				for x := base.Min.X; x < base.Max.X; x++ {
					gray.Set(x, y, img.At(x, y))
				}
			}
		}
		layers[n] = implicit.Layer{
			Z:     float64(n) * thickness,
			Image: gray,
		}
	}

	stack = &implicit.Stack{
		LayerThickness: thickness,
		Layers:         layers,
	}
	return
}
