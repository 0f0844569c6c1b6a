//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
	"github.com/osmose-engineering/implicit-geometry/mesh"
	"github.com/osmose-engineering/implicit-geometry/slicer"
)

type SliceCommand struct {
	*pflag.FlagSet

	Input       string
	Output      string
	SliceDir    string
	Machine     string
	ResolutionX int
	ResolutionY int
	Thickness   float64
	Infill      string
}

func NewSliceCommander() *SliceCommand {
	flagSet := pflag.NewFlagSet("slice", pflag.ContinueOnError)

	cmd := &SliceCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVarP(&cmd.Input, "input", "i", "", "Document file to slice (.ifg)")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "Archive file to write; suffix selects the format")
	cmd.StringVar(&cmd.SliceDir, "slices", "", "Directory for intermediate PNG slices")
	cmd.StringVar(&cmd.Machine, "machine", "", "Machine profile supplying the raster resolution")
	cmd.IntVarP(&cmd.ResolutionX, "res-x", "x", 512, "Raster width in pixels")
	cmd.IntVarP(&cmd.ResolutionY, "res-y", "y", 512, "Raster height in pixels")
	cmd.Float64VarP(&cmd.Thickness, "thickness", "t", 0.05, "Layer thickness in mm")
	cmd.StringVar(&cmd.Infill, "infill", "", "Infill document for mesh shell-and-infill slicing")

	return cmd
}

func NewSliceCommand() Commander { return NewSliceCommander() }

func (cmd *SliceCommand) slice() (stack *implicit.Stack, err error) {
	doc, err := implicit.LoadDocument(cmd.Input)
	if err != nil {
		return
	}
	bounds, err := doc.Bounds()
	if err != nil {
		return
	}

	opts := slicer.Options{
		ResolutionX:    cmd.ResolutionX,
		ResolutionY:    cmd.ResolutionY,
		LayerThickness: cmd.Thickness,
		Progress: func(done, total int) {
			logger.Debug("sliced layer", "done", done, "total", total)
		},
	}

	cache := mesh.NewCache(nil)

	meshPath, isMesh := doc.MeshRoot()
	switch {
	case isMesh && cmd.Infill != "":
		var src mesh.Source
		src, err = cache.Source(meshPath)
		if err != nil {
			return
		}
		var infillDoc *implicit.Document
		infillDoc, err = implicit.LoadDocument(cmd.Infill)
		if err != nil {
			return
		}
		var infill implicit.Field
		infill, err = infillDoc.Compile(cache)
		if err != nil {
			return
		}
		stack, err = slicer.SliceHybrid(src, bounds, slicer.HybridOptions{
			Options: opts,
			Infill:  infill,
		})

	case isMesh:
		var src mesh.Source
		src, err = cache.Source(meshPath)
		if err != nil {
			return
		}
		stack, err = slicer.SliceMesh(src, bounds, opts)

	default:
		if cmd.Infill != "" {
			err = fmt.Errorf("--infill requires a mesh document")
			return
		}
		var field implicit.Field
		field, err = doc.Compile(cache)
		if err != nil {
			return
		}
		stack, err = slicer.Slice(field, bounds, opts)
	}
	return
}

func (cmd *SliceCommand) Run() (err error) {
	if cmd.Input == "" {
		err = fmt.Errorf("--input: required parameter missing")
		return
	}
	if cmd.Output == "" && cmd.SliceDir == "" {
		err = fmt.Errorf("--output or --slices: required parameter missing")
		return
	}

	if cmd.Machine != "" {
		var machine implicit.Machine
		machine, err = implicit.MachineByName(cmd.Machine)
		if err != nil {
			return
		}
		cmd.ResolutionX = machine.Size.X
		cmd.ResolutionY = machine.Size.Y
	}

	stack, err := cmd.slice()
	if err != nil {
		return
	}
	logger.Info("sliced document", "layers", len(stack.Layers))

	if cmd.SliceDir != "" {
		if err = slicer.WriteSliceDir(cmd.SliceDir, stack); err != nil {
			return
		}
		logger.Info("wrote slice directory", "path", cmd.SliceDir)
	}

	if cmd.Output != "" {
		var format *implicit.Format
		format, err = implicit.NewFormat(cmd.Output, cmd.Args())
		if err != nil {
			return
		}
		if err = format.WriteStack(stack); err != nil {
			return
		}
		logger.Info("wrote archive", "path", cmd.Output)
	}
	return
}
