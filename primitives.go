//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"math"
)

// Sphere is the exact distance field |P - Center| - Radius.
type Sphere struct {
	Center Vec3
	Radius float64
}

func NewSphere(center Vec3, radius float64) (*Sphere, error) {
	if radius <= 0 {
		return nil, invalidParameter("radius", "must be positive")
	}
	return &Sphere{Center: center, Radius: radius}, nil
}

func (s *Sphere) Evaluate(p Vec3) float64 {
	return p.Sub(s.Center).Length() - s.Radius
}

// Box is an axis-aligned box given by center and half-extents. Outside the
// box the field is the length of the positive component-wise offset;
// inside it is the (negative) largest component. A point whose outside
// distance is exactly zero takes the inside branch.
type Box struct {
	Center Vec3
	Half   Vec3
}

func NewBox(center, half Vec3) (*Box, error) {
	if half.X <= 0 || half.Y <= 0 || half.Z <= 0 {
		return nil, invalidParameter("half-extents", "must be positive on every axis")
	}
	return &Box{Center: center, Half: half}, nil
}

func (b *Box) Evaluate(p Vec3) float64 {
	dx := math.Abs(p.X-b.Center.X) - b.Half.X
	dy := math.Abs(p.Y-b.Center.Y) - b.Half.Y
	dz := math.Abs(p.Z-b.Center.Z) - b.Half.Z

	ox := math.Max(dx, 0)
	oy := math.Max(dy, 0)
	oz := math.Max(dz, 0)
	outside := math.Sqrt(ox*ox + oy*oy + oz*oz)
	if outside > 0 {
		return outside
	}
	return math.Max(dx, math.Max(dy, dz))
}

// Cube is the Chebyshev cube accepted by the graph dialect: a cube of edge
// Size centered at the origin, max(|x|,|y|,|z|) - size/2.
type Cube struct {
	Size float64
}

func NewCube(size float64) (*Cube, error) {
	if size <= 0 {
		return nil, invalidParameter("size", "must be positive")
	}
	return &Cube{Size: size}, nil
}

func (c *Cube) Evaluate(p Vec3) float64 {
	return math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))) - c.Size/2
}

// Cylinder is the infinite cylinder around the line through Point with
// direction Axis. The axis is normalized at construction.
type Cylinder struct {
	Point  Vec3
	Axis   Vec3 // unit length
	Radius float64
}

func NewCylinder(point, axis Vec3, radius float64) (*Cylinder, error) {
	if radius <= 0 {
		return nil, invalidParameter("radius", "must be positive")
	}
	length := axis.Length()
	if length == 0 {
		return nil, invalidParameter("axis", "direction has zero length")
	}
	return &Cylinder{Point: point, Axis: axis.Scale(1 / length), Radius: radius}, nil
}

func (c *Cylinder) Evaluate(p Vec3) float64 {
	d := p.Sub(c.Point)
	t := d.Dot(c.Axis)
	return d.Sub(c.Axis.Scale(t)).Length() - c.Radius
}

// CappedCylinder is the finite origin-centered cylinder of the graph
// dialect: max(length(xy) - radius, |z| - height/2).
type CappedCylinder struct {
	Radius float64
	Height float64
}

func NewCappedCylinder(radius, height float64) (*CappedCylinder, error) {
	if radius <= 0 {
		return nil, invalidParameter("radius", "must be positive")
	}
	if height <= 0 {
		return nil, invalidParameter("height", "must be positive")
	}
	return &CappedCylinder{Radius: radius, Height: height}, nil
}

func (c *CappedCylinder) Evaluate(p Vec3) float64 {
	radial := math.Sqrt(p.X*p.X+p.Y*p.Y) - c.Radius
	return math.Max(radial, math.Abs(p.Z)-c.Height/2)
}

// Torus lies in the XY plane through Center. RingRadius is the distance
// from the center to the tube centerline, TubeRadius the tube's own
// radius.
type Torus struct {
	Center     Vec3
	RingRadius float64
	TubeRadius float64
}

func NewTorus(center Vec3, ringRadius, tubeRadius float64) (*Torus, error) {
	if ringRadius <= 0 {
		return nil, invalidParameter("ring radius", "must be positive")
	}
	if tubeRadius <= 0 {
		return nil, invalidParameter("tube radius", "must be positive")
	}
	return &Torus{Center: center, RingRadius: ringRadius, TubeRadius: tubeRadius}, nil
}

func (t *Torus) Evaluate(p Vec3) float64 {
	d := p.Sub(t.Center)
	qx := math.Sqrt(d.X*d.X+d.Y*d.Y) - t.RingRadius
	return math.Sqrt(qx*qx+d.Z*d.Z) - t.TubeRadius
}
