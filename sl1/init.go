//
// Copyright (c) 2026 Osmose Engineering
//

package sl1

import (
	implicit "github.com/osmose-engineering/implicit-geometry"
)

func init() {
	implicit.RegisterFormatter(".sl1", func(suffix string) implicit.Formatter {
		return NewFormatter(suffix)
	})
}
