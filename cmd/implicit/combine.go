//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

type CombineCommand struct {
	*pflag.FlagSet

	Op     string
	Inputs []string
	Bounds []float64
	Output string
}

func NewCombineCommander() *CombineCommand {
	flagSet := pflag.NewFlagSet("combine", pflag.ContinueOnError)

	cmd := &CombineCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVar(&cmd.Op, "op", "union", "Boolean operation: union, intersect, or subtract")
	cmd.StringSliceVarP(&cmd.Inputs, "inputs", "i", nil, "Input document files")
	cmd.Float64SliceVarP(&cmd.Bounds, "bounds", "b", nil, "Document bounds: xmin,xmax,ymin,ymax,zmin,zmax")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "Document file to write (.ifg)")

	return cmd
}

func NewCombineCommand() Commander { return NewCombineCommander() }

func (cmd *CombineCommand) Run() (err error) {
	if cmd.Output == "" {
		err = fmt.Errorf("--output: required parameter missing")
		return
	}

	switch cmd.Op {
	case "union", "intersect":
		if len(cmd.Inputs) < 2 {
			err = fmt.Errorf("%s needs at least 2 inputs, has %d", cmd.Op, len(cmd.Inputs))
			return
		}
	case "subtract":
		if len(cmd.Inputs) != 2 {
			err = fmt.Errorf("subtract needs exactly 2 inputs, has %d", len(cmd.Inputs))
			return
		}
	default:
		err = fmt.Errorf("unknown boolean operation '%s'", cmd.Op)
		return
	}

	bounds, err := cmd.documentBounds()
	if err != nil {
		return
	}

	doc := implicit.NewFlatDocument(bounds, &implicit.FlatSDF{
		Kind:   cmd.Op,
		Inputs: cmd.Inputs,
	})

	logger.Info("writing boolean document", "op", cmd.Op, "path", cmd.Output)
	err = doc.WriteFile(cmd.Output)
	return
}

// documentBounds uses the explicit --bounds region, or the union of
// the input documents' regions.
func (cmd *CombineCommand) documentBounds() (bounds implicit.Bounds, err error) {
	if cmd.Bounds != nil {
		return parseBounds(cmd.Bounds)
	}

	for n, path := range cmd.Inputs {
		var doc *implicit.Document
		doc, err = implicit.LoadDocument(path)
		if err != nil {
			return
		}
		var b implicit.Bounds
		b, err = doc.Bounds()
		if err != nil {
			return
		}
		if n == 0 {
			bounds = b
			continue
		}
		bounds.XMin = min(bounds.XMin, b.XMin)
		bounds.XMax = max(bounds.XMax, b.XMax)
		bounds.YMin = min(bounds.YMin, b.YMin)
		bounds.YMax = max(bounds.YMax, b.YMax)
		bounds.ZMin = min(bounds.ZMin, b.ZMin)
		bounds.ZMax = max(bounds.ZMax, b.ZMax)
	}
	return
}
