//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

type InfoCommand struct {
	*pflag.FlagSet

	Input       string
	LayerDetail bool
}

func NewInfoCommander() *InfoCommand {
	flagSet := pflag.NewFlagSet("info", pflag.ContinueOnError)

	cmd := &InfoCommand{FlagSet: flagSet}
	cmd.SetInterspersed(false)
	cmd.StringVarP(&cmd.Input, "input", "i", "", "Archive file to inspect")
	cmd.BoolVarP(&cmd.LayerDetail, "layer", "l", false, "Show per-layer detail")

	return cmd
}

func NewInfoCommand() Commander { return NewInfoCommander() }

func (cmd *InfoCommand) Run() (err error) {
	if cmd.Input == "" {
		err = fmt.Errorf("--input: required parameter missing")
		return
	}

	format, err := implicit.NewFormat(cmd.Input, cmd.Args())
	if err != nil {
		return
	}
	stack, err := format.ReadStack()
	if err != nil {
		return
	}

	width, height := stack.Size()
	fmt.Printf("Layers: %v, %vx%v slices, %.3f mm layer height\n",
		len(stack.Layers), width, height, stack.LayerThickness)

	if cmd.LayerDetail {
		counts := make([]int, len(stack.Layers))
		err = implicit.ForEachLayer(stack, func(n int, layer implicit.Layer) error {
			solid := 0
			for _, pixel := range layer.Image.Pix {
				if pixel >= 0x80 {
					solid++
				}
			}
			counts[n] = solid
			return nil
		})
		if err != nil {
			return
		}
		for n, layer := range stack.Layers {
			fmt.Printf("%d: @%.3f %d solid pixels\n", n, layer.Z, counts[n])
		}
	}
	return
}
