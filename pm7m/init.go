//
// Copyright (c) 2026 Osmose Engineering
//

package pm7m

import (
	implicit "github.com/osmose-engineering/implicit-geometry"
)

func init() {
	newFormatter := func(suffix string) implicit.Formatter {
		return NewFormatter(suffix)
	}

	implicit.RegisterFormatter(".pm7m", newFormatter)
}
