//
// Copyright (c) 2026 Osmose Engineering
//

package main

import (
	"fmt"

	implicit "github.com/osmose-engineering/implicit-geometry"
)

// parseBounds converts the xmin,xmax,ymin,ymax,zmin,zmax flag value
// into a validated sampling region.
func parseBounds(values []float64) (bounds implicit.Bounds, err error) {
	if len(values) != 6 {
		err = fmt.Errorf("bounds needs 6 values, has %d", len(values))
		return
	}
	bounds = implicit.Bounds{
		XMin: values[0], XMax: values[1],
		YMin: values[2], YMax: values[3],
		ZMin: values[4], ZMax: values[5],
	}
	err = bounds.Validate()
	return
}
