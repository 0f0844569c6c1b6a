//
// Copyright (c) 2026 Osmose Engineering
//

package ctb

import (
	implicit "github.com/osmose-engineering/implicit-geometry"
)

func init() {
	newFormatter := func(suffix string) implicit.Formatter {
		return NewFormatter(suffix)
	}

	implicit.RegisterFormatter(".ctb", newFormatter)
}
