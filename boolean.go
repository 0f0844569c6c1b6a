//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"math"
)

// Union is the pointwise minimum over its operands.
type Union struct {
	Fields []Field
}

func NewUnion(fields ...Field) (*Union, error) {
	if len(fields) == 0 {
		return nil, invalidParameter("fields", "union needs at least one operand")
	}
	return &Union{Fields: fields}, nil
}

func (u *Union) Evaluate(p Vec3) float64 {
	v := u.Fields[0].Evaluate(p)
	for _, f := range u.Fields[1:] {
		v = math.Min(v, f.Evaluate(p))
	}
	return v
}

// Intersect is the pointwise maximum over its operands.
type Intersect struct {
	Fields []Field
}

func NewIntersect(fields ...Field) (*Intersect, error) {
	if len(fields) == 0 {
		return nil, invalidParameter("fields", "intersection needs at least one operand")
	}
	return &Intersect{Fields: fields}, nil
}

func (i *Intersect) Evaluate(p Vec3) float64 {
	v := i.Fields[0].Evaluate(p)
	for _, f := range i.Fields[1:] {
		v = math.Max(v, f.Evaluate(p))
	}
	return v
}

// Subtract removes B from A: max(a, -b).
type Subtract struct {
	A, B Field
}

func NewSubtract(a, b Field) *Subtract {
	return &Subtract{A: a, B: b}
}

func (s *Subtract) Evaluate(p Vec3) float64 {
	return math.Max(s.A.Evaluate(p), -s.B.Evaluate(p))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// smoothBlend is Quilez's polynomial smooth-min:
// h = clamp(0.5 + 0.5*(vb-va)/k, 0, 1); lerp(vb, va, h) - k*h*(1-h).
func smoothBlend(va, vb, k float64) float64 {
	h := clamp01(0.5 + 0.5*(vb-va)/k)
	return (vb*h + va*(1-h)) - k*h*(1-h)
}

// SmoothUnion blends two fields with rounding factor K (nonzero).
type SmoothUnion struct {
	A, B Field
	K    float64
}

func NewSmoothUnion(a, b Field, k float64) (*SmoothUnion, error) {
	if k == 0 {
		return nil, invalidParameter("k", "blend factor must be nonzero")
	}
	return &SmoothUnion{A: a, B: b, K: k}, nil
}

func (s *SmoothUnion) Evaluate(p Vec3) float64 {
	return smoothBlend(s.A.Evaluate(p), s.B.Evaluate(p), s.K)
}

// SmoothSubtract is a smooth union of A with inverted B.
type SmoothSubtract struct {
	A, B Field
	K    float64
}

func NewSmoothSubtract(a, b Field, k float64) (*SmoothSubtract, error) {
	if k == 0 {
		return nil, invalidParameter("k", "blend factor must be nonzero")
	}
	return &SmoothSubtract{A: a, B: b, K: k}, nil
}

func (s *SmoothSubtract) Evaluate(p Vec3) float64 {
	return smoothBlend(s.A.Evaluate(p), -s.B.Evaluate(p), s.K)
}

// SmoothIntersect flips the blend direction and the sign of the
// correction term.
type SmoothIntersect struct {
	A, B Field
	K    float64
}

func NewSmoothIntersect(a, b Field, k float64) (*SmoothIntersect, error) {
	if k == 0 {
		return nil, invalidParameter("k", "blend factor must be nonzero")
	}
	return &SmoothIntersect{A: a, B: b, K: k}, nil
}

func (s *SmoothIntersect) Evaluate(p Vec3) float64 {
	va := s.A.Evaluate(p)
	vb := s.B.Evaluate(p)
	h := clamp01(0.5 + 0.5*(va-vb)/s.K)
	return (vb*h + va*(1-h)) + s.K*h*(1-h)
}
