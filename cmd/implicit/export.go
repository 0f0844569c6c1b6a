//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
	"github.com/osmose-engineering/implicit-geometry/slicer"
)

type ExportCommand struct {
	*pflag.FlagSet

	SliceDir  string
	Thickness float64
	Output    string
}

func NewExportCommander() *ExportCommand {
	flagSet := pflag.NewFlagSet("export", pflag.ContinueOnError)

	cmd := &ExportCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVar(&cmd.SliceDir, "slices", "", "Directory of slice_0000.png ... slice_NNNN.png files")
	cmd.Float64VarP(&cmd.Thickness, "thickness", "t", 0.05, "Layer thickness in mm")
	cmd.StringVarP(&cmd.Output, "output", "o", "", "Archive file to write; suffix selects the format")

	return cmd
}

func NewExportCommand() Commander { return NewExportCommander() }

var slicePattern = regexp.MustCompile(`^slice_\d{4}\.png$`)

func (cmd *ExportCommand) Run() (err error) {
	if cmd.SliceDir == "" {
		err = fmt.Errorf("--slices: required parameter missing")
		return
	}
	if cmd.Output == "" {
		err = fmt.Errorf("--output: required parameter missing")
		return
	}

	entries, err := os.ReadDir(cmd.SliceDir)
	if err != nil {
		return
	}
	count := 0
	for _, entry := range entries {
		if slicePattern.MatchString(entry.Name()) {
			count++
		}
	}

	stack, err := slicer.LoadSlices(cmd.SliceDir, count, cmd.Thickness)
	if err != nil {
		return
	}
	logger.Info("loaded slices", "count", count, "path", cmd.SliceDir)

	format, err := implicit.NewFormat(cmd.Output, cmd.Args())
	if err != nil {
		return
	}
	if err = format.WriteStack(stack); err != nil {
		return
	}
	logger.Info("wrote archive", "path", cmd.Output)
	return
}
