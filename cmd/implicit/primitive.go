//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

type PrimitiveCommand struct {
	*pflag.FlagSet

	Kind       string
	Center     []float64
	Radius     float64
	Halfwidths []float64
	AxisDir    []float64
	RingRadius float64
	TubeRadius float64
	Margin     float64
	Bounds     []float64
	Output     string
}

func NewPrimitiveCommander() *PrimitiveCommand {
	flagSet := pflag.NewFlagSet("primitive", pflag.ContinueOnError)

	cmd := &PrimitiveCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVarP(&cmd.Kind, "kind", "k", "sphere", "Shape: sphere, box, cylinder, or torus")
	cmd.Float64SliceVarP(&cmd.Center, "center", "c", []float64{0, 0, 0}, "Shape center")
	cmd.Float64VarP(&cmd.Radius, "radius", "r", 10.0, "Sphere or cylinder radius")
	cmd.Float64SliceVar(&cmd.Halfwidths, "halfwidths", []float64{10, 10, 10}, "Box halfwidths")
	cmd.Float64SliceVar(&cmd.AxisDir, "axis", []float64{0, 0, 1}, "Cylinder axis direction")
	cmd.Float64Var(&cmd.RingRadius, "ring-radius", 10.0, "Torus ring radius")
	cmd.Float64Var(&cmd.TubeRadius, "tube-radius", 2.5, "Torus tube radius")
	cmd.Float64Var(&cmd.Margin, "margin", 1.0, "Extra space around the shape when bounds are derived")
	cmd.Float64SliceVarP(&cmd.Bounds, "bounds", "b", nil, "Document bounds: xmin,xmax,ymin,ymax,zmin,zmax")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "Document file to write (.ifg)")

	return cmd
}

func NewPrimitiveCommand() Commander { return NewPrimitiveCommander() }

// extent is the half-size of the axis-aligned region the shape occupies.
func (cmd *PrimitiveCommand) extent() (ex, ey, ez float64, err error) {
	switch cmd.Kind {
	case "sphere":
		ex, ey, ez = cmd.Radius, cmd.Radius, cmd.Radius
	case "box":
		if len(cmd.Halfwidths) != 3 {
			err = fmt.Errorf("halfwidths needs 3 values, has %d", len(cmd.Halfwidths))
			return
		}
		ex, ey, ez = cmd.Halfwidths[0], cmd.Halfwidths[1], cmd.Halfwidths[2]
	case "cylinder":
		// Infinite along its axis; clamp the document to a radius cube.
		ex, ey, ez = cmd.Radius, cmd.Radius, cmd.Radius
	case "torus":
		r := cmd.RingRadius + cmd.TubeRadius
		ex, ey, ez = r, r, cmd.TubeRadius
	default:
		err = fmt.Errorf("unknown primitive kind '%s'", cmd.Kind)
	}
	return
}

// documentBounds uses the explicit --bounds region, or derives one
// from the shape's extent plus the margin.
func (cmd *PrimitiveCommand) documentBounds() (bounds implicit.Bounds, err error) {
	if cmd.Bounds != nil {
		return parseBounds(cmd.Bounds)
	}

	ex, ey, ez, err := cmd.extent()
	if err != nil {
		return
	}
	bounds = implicit.Bounds{
		XMin: cmd.Center[0] - ex - cmd.Margin,
		XMax: cmd.Center[0] + ex + cmd.Margin,
		YMin: cmd.Center[1] - ey - cmd.Margin,
		YMax: cmd.Center[1] + ey + cmd.Margin,
		ZMin: cmd.Center[2] - ez - cmd.Margin,
		ZMax: cmd.Center[2] + ez + cmd.Margin,
	}
	return
}

func (cmd *PrimitiveCommand) Run() (err error) {
	if cmd.Output == "" {
		err = fmt.Errorf("--output: required parameter missing")
		return
	}
	if len(cmd.Center) != 3 {
		err = fmt.Errorf("center needs 3 values, has %d", len(cmd.Center))
		return
	}

	bounds, err := cmd.documentBounds()
	if err != nil {
		return
	}

	sdf := &implicit.FlatSDF{Kind: cmd.Kind, Center: cmd.Center}
	switch cmd.Kind {
	case "sphere":
		sdf.Radius = cmd.Radius
	case "box":
		sdf.Halfwidths = cmd.Halfwidths
	case "cylinder":
		sdf.Center = nil
		sdf.AxisPoint = cmd.Center
		sdf.AxisDir = cmd.AxisDir
		sdf.Radius = cmd.Radius
	case "torus":
		sdf.RingRadius = cmd.RingRadius
		sdf.TubeRadius = cmd.TubeRadius
	}

	doc := implicit.NewFlatDocument(bounds, sdf)

	logger.Info("writing primitive document", "kind", cmd.Kind, "path", cmd.Output)
	err = doc.WriteFile(cmd.Output)
	return
}
