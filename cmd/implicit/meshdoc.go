//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
	"github.com/osmose-engineering/implicit-geometry/mesh"
)

type MeshCommand struct {
	*pflag.FlagSet

	STL    string
	Margin float64
	Output string
}

func NewMeshCommander() *MeshCommand {
	flagSet := pflag.NewFlagSet("mesh", pflag.ContinueOnError)

	cmd := &MeshCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVar(&cmd.STL, "stl", "", "STL mesh file to reference")
	cmd.Float64Var(&cmd.Margin, "margin", 0.0, "Extra space around the mesh in the document bounds")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "Document file to write (.ifg)")

	return cmd
}

func NewMeshCommand() Commander { return NewMeshCommander() }

func (cmd *MeshCommand) Run() (err error) {
	if cmd.STL == "" {
		err = fmt.Errorf("--stl: required parameter missing")
		return
	}
	if cmd.Output == "" {
		err = fmt.Errorf("--output: required parameter missing")
		return
	}

	src, err := mesh.LoadSTL(cmd.STL)
	if err != nil {
		return
	}
	lo, hi := src.Bounds()

	doc := implicit.NewFlatDocument(implicit.Bounds{
		XMin: lo.X - cmd.Margin, XMax: hi.X + cmd.Margin,
		YMin: lo.Y - cmd.Margin, YMax: hi.Y + cmd.Margin,
		ZMin: lo.Z - cmd.Margin, ZMax: hi.Z + cmd.Margin,
	}, &implicit.FlatSDF{
		Kind: "mesh",
		Path: cmd.STL,
	})

	logger.Info("writing mesh document", "stl", cmd.STL, "path", cmd.Output)
	err = doc.WriteFile(cmd.Output)
	return
}
