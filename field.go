//
// Copyright (c) 2026 Osmose Engineering
//

// Package implicit models printable geometry as signed-distance fields:
// negative inside, zero on the surface, positive outside. Fields are pure
// values built from explicit parameter structs so they can be composed and
// stored without capturing loose state.
package implicit

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in model space (millimeters).
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Field is a signed scalar function of a point. Implementations must be
// deterministic and side-effect free; Evaluate is called concurrently from
// the slicer's layer workers.
type Field interface {
	Evaluate(p Vec3) float64
}

// Bounds is the axis-aligned sampling region of a document. It is supplied
// by the caller (or inferred from a mesh) and never auto-corrected.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// Validate checks the min <= max invariant on all three axes.
func (b Bounds) Validate() error {
	if b.XMin > b.XMax || b.YMin > b.YMax || b.ZMin > b.ZMax {
		return MalformedDocumentError(fmt.Sprintf("inverted bounds [%g,%g]x[%g,%g]x[%g,%g]",
			b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax))
	}
	return nil
}

// LayerCount returns the number of slices between ZMin and ZMax at the
// given layer thickness: ceil(span/thickness) + 1.
func (b Bounds) LayerCount(thickness float64) int {
	return int(math.Ceil((b.ZMax-b.ZMin)/thickness)) + 1
}

// Translate evaluates its input at p - Offset. With Scale set (non-1), the
// offset point is divided by the scale and the child value multiplied by
// it, which keeps distances correct for uniform scaling.
type Translate struct {
	Input  Field
	Offset Vec3
	Scale  float64
}

// NewTranslate wraps input with a translation (and optional uniform scale;
// pass 1 for none).
func NewTranslate(input Field, offset Vec3, scale float64) (Field, error) {
	if scale == 0 {
		return nil, invalidParameter("scale", "must be nonzero")
	}
	return &Translate{Input: input, Offset: offset, Scale: scale}, nil
}

func (t *Translate) Evaluate(p Vec3) float64 {
	q := p.Sub(t.Offset)
	if t.Scale != 1 {
		return t.Input.Evaluate(q.Scale(1/t.Scale)) * t.Scale
	}
	return t.Input.Evaluate(q)
}
