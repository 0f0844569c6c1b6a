//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"math"
)

// LatticePattern selects one of the closed-form triply periodic minimal
// surface families.
type LatticePattern string

const (
	PatternGyroid   = LatticePattern("gyroid")
	PatternSchwarzP = LatticePattern("schwarz_p")
	PatternDiamond  = LatticePattern("diamond")
)

// tpms carries the per-axis wave numbers k = 2*pi/cell and the level-set
// shift shared by all three surface families.
type tpms struct {
	kx, ky, kz float64
	thickness  float64
}

func waveNumbers(cell Vec3, thickness float64) (tpms, error) {
	if cell.X <= 0 || cell.Y <= 0 || cell.Z <= 0 {
		return tpms{}, invalidParameter("cell size", "must be strictly positive")
	}
	k := 2 * math.Pi
	return tpms{kx: k / cell.X, ky: k / cell.Y, kz: k / cell.Z, thickness: thickness}, nil
}

// Gyroid is sin(kx)cos(ky) + sin(ky)cos(kz) + sin(kz)cos(kx) - thickness.
type Gyroid struct {
	tpms
}

// NewGyroid builds a gyroid with uniform cell size lambda.
func NewGyroid(lambda, thickness float64) (*Gyroid, error) {
	return NewGyroidCell(Vec3{lambda, lambda, lambda}, thickness)
}

// NewGyroidCell allows distinct periods per axis.
func NewGyroidCell(cell Vec3, thickness float64) (*Gyroid, error) {
	w, err := waveNumbers(cell, thickness)
	if err != nil {
		return nil, err
	}
	return &Gyroid{w}, nil
}

func (g *Gyroid) Evaluate(p Vec3) float64 {
	v := math.Sin(g.kx*p.X)*math.Cos(g.ky*p.Y) +
		math.Sin(g.ky*p.Y)*math.Cos(g.kz*p.Z) +
		math.Sin(g.kz*p.Z)*math.Cos(g.kx*p.X)
	return v - g.thickness
}

// SchwarzP is cos(kx) + cos(ky) + cos(kz) - thickness.
type SchwarzP struct {
	tpms
}

func NewSchwarzP(lambda, thickness float64) (*SchwarzP, error) {
	return NewSchwarzPCell(Vec3{lambda, lambda, lambda}, thickness)
}

func NewSchwarzPCell(cell Vec3, thickness float64) (*SchwarzP, error) {
	w, err := waveNumbers(cell, thickness)
	if err != nil {
		return nil, err
	}
	return &SchwarzP{w}, nil
}

func (s *SchwarzP) Evaluate(p Vec3) float64 {
	return math.Cos(s.kx*p.X) + math.Cos(s.ky*p.Y) + math.Cos(s.kz*p.Z) - s.thickness
}

// Diamond is the Schwarz D surface:
// sin sin sin + sin cos cos + cos sin cos + cos cos sin - thickness.
type Diamond struct {
	tpms
}

func NewDiamond(lambda, thickness float64) (*Diamond, error) {
	return NewDiamondCell(Vec3{lambda, lambda, lambda}, thickness)
}

func NewDiamondCell(cell Vec3, thickness float64) (*Diamond, error) {
	w, err := waveNumbers(cell, thickness)
	if err != nil {
		return nil, err
	}
	return &Diamond{w}, nil
}

func (d *Diamond) Evaluate(p Vec3) float64 {
	sx, cx := math.Sincos(d.kx * p.X)
	sy, cy := math.Sincos(d.ky * p.Y)
	sz, cz := math.Sincos(d.kz * p.Z)
	v := sx*sy*sz + sx*cy*cz + cx*sy*cz + cx*cy*sz
	return v - d.thickness
}

// Shell is the absolute-value level set |value| - thickness around a
// periodic surface: the wall extraction form used by Lattice graph nodes
// and the hybrid infill path. Surface must carry no thickness shift of its
// own.
type Shell struct {
	Surface   Field
	Thickness float64
}

// NewShell builds the wall form for a pattern with the given cell periods.
func NewShell(pattern LatticePattern, cell Vec3, thickness float64) (*Shell, error) {
	var surface Field
	var err error
	switch pattern {
	case PatternGyroid:
		surface, err = NewGyroidCell(cell, 0)
	case PatternSchwarzP:
		surface, err = NewSchwarzPCell(cell, 0)
	case PatternDiamond:
		surface, err = NewDiamondCell(cell, 0)
	default:
		return nil, invalidParameter("pattern", "unknown lattice pattern '"+string(pattern)+"'")
	}
	if err != nil {
		return nil, err
	}
	return &Shell{Surface: surface, Thickness: thickness}, nil
}

func (s *Shell) Evaluate(p Vec3) float64 {
	return math.Abs(s.Surface.Evaluate(p)) - s.Thickness
}
