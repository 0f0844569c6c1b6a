//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

type LatticeCommand struct {
	*pflag.FlagSet

	Kind      string
	Pattern   string
	CellSize  float64
	Thickness float64
	Seeds     int
	Seed      int64
	Bounds    []float64
	Output    string
}

func NewLatticeCommander() *LatticeCommand {
	flagSet := pflag.NewFlagSet("lattice", pflag.ContinueOnError)

	cmd := &LatticeCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVarP(&cmd.Kind, "kind", "k", "periodic", "Lattice family: periodic or organic")
	cmd.StringVarP(&cmd.Pattern, "pattern", "p", "gyroid", "Periodic pattern: gyroid, schwarz_p, or diamond")
	cmd.Float64Var(&cmd.CellSize, "cell-size", 10.0, "Periodic unit cell size in mm")
	cmd.Float64VarP(&cmd.Thickness, "thickness", "t", 0.5, "Wall half-thickness in mm")
	cmd.IntVar(&cmd.Seeds, "seeds", 1000, "Organic foam seed point count")
	cmd.Int64Var(&cmd.Seed, "seed", 0, "Organic foam random seed")
	cmd.Float64SliceVarP(&cmd.Bounds, "bounds", "b", nil, "Document bounds: xmin,xmax,ymin,ymax,zmin,zmax")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "Document file to write (.ifg)")

	return cmd
}

func NewLatticeCommand() Commander { return NewLatticeCommander() }

func (cmd *LatticeCommand) Run() (err error) {
	if cmd.Output == "" {
		err = fmt.Errorf("--output: required parameter missing")
		return
	}
	bounds, err := parseBounds(cmd.Bounds)
	if err != nil {
		return
	}

	var sdf *implicit.FlatSDF
	switch cmd.Kind {
	case "periodic":
		switch cmd.Pattern {
		case "gyroid", "schwarz_p", "diamond":
		default:
			err = fmt.Errorf("unknown lattice pattern '%s'", cmd.Pattern)
			return
		}
		sdf = &implicit.FlatSDF{
			Kind:      cmd.Pattern,
			CellSize:  cmd.CellSize,
			Thickness: cmd.Thickness,
		}
	case "organic":
		sdf = &implicit.FlatSDF{
			Kind:      "voronoi_foam",
			SeedCount: cmd.Seeds,
			Seed:      cmd.Seed,
			Thickness: cmd.Thickness,
		}
	default:
		err = fmt.Errorf("unknown lattice kind '%s'", cmd.Kind)
		return
	}

	doc := implicit.NewFlatDocument(bounds, sdf)

	logger.Info("writing lattice document", "kind", cmd.Kind, "path", cmd.Output)
	err = doc.WriteFile(cmd.Output)
	return
}
