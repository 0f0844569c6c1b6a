//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
	"github.com/osmose-engineering/implicit-geometry/mesh"
	"github.com/osmose-engineering/implicit-geometry/render"
)

type STLCommand struct {
	*pflag.FlagSet

	Input  string
	Cells  int
	Output string
}

func NewSTLCommander() *STLCommand {
	flagSet := pflag.NewFlagSet("stl", pflag.ContinueOnError)

	cmd := &STLCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVarP(&cmd.Input, "input", "i", "", "Document file to tessellate (.ifg)")
	cmd.IntVar(&cmd.Cells, "cells", render.DefaultMeshCells, "Marching cubes cells along the longest axis")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "STL file to write")

	return cmd
}

func NewSTLCommand() Commander { return NewSTLCommander() }

func (cmd *STLCommand) Run() (err error) {
	if cmd.Input == "" {
		err = fmt.Errorf("--input: required parameter missing")
		return
	}
	if cmd.Output == "" {
		err = fmt.Errorf("--output: required parameter missing")
		return
	}

	doc, err := implicit.LoadDocument(cmd.Input)
	if err != nil {
		return
	}
	bounds, err := doc.Bounds()
	if err != nil {
		return
	}
	field, err := doc.Compile(mesh.NewCache(nil))
	if err != nil {
		return
	}

	logger.Info("tessellating field", "cells", cmd.Cells)
	if err = render.ExportSTL(cmd.Output, field, bounds, cmd.Cells); err != nil {
		return
	}
	logger.Info("wrote stl", "path", cmd.Output)
	return
}
