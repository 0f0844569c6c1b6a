//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"math"
	"math/rand"
)

// VoronoiFoam is the analytic field for foam-cell walls over a fixed seed
// set: (d2 - d1)/2 - thickness, where d1 and d2 are the distances to the
// nearest and second-nearest seed. Points within thickness of a bisector
// plane between the two nearest seeds are solid.
type VoronoiFoam struct {
	Seeds     []Vec3
	Thickness float64
}

func NewVoronoiFoam(seeds []Vec3, thickness float64) (*VoronoiFoam, error) {
	if len(seeds) < 2 {
		return nil, invalidParameter("seeds", "foam needs at least 2 seed points")
	}
	return &VoronoiFoam{Seeds: seeds, Thickness: thickness}, nil
}

func (v *VoronoiFoam) Evaluate(p Vec3) float64 {
	d1 := math.Inf(1)
	d2 := math.Inf(1)
	for _, s := range v.Seeds {
		d := p.Sub(s)
		dsq := d.Dot(d)
		switch {
		case dsq < d1:
			d2 = d1
			d1 = dsq
		case dsq < d2:
			d2 = dsq
		}
	}
	return (math.Sqrt(d2)-math.Sqrt(d1))/2 - v.Thickness
}

const (
	interiorTriesPerPoint = 50
	surfaceSampleEpsilon  = 1e-3
	surfaceSampleMaxTries = 1000000
	projectDelta          = 1e-4
	projectTolerance      = 1e-6
	gradientFloor         = 1e-12
)

func randomIn(rng *rand.Rand, b Bounds) Vec3 {
	return Vec3{
		X: b.XMin + rng.Float64()*(b.XMax-b.XMin),
		Y: b.YMin + rng.Float64()*(b.YMax-b.YMin),
		Z: b.ZMin + rng.Float64()*(b.ZMax-b.ZMin),
	}
}

// SampleInterior rejection-samples n points uniformly within the solid
// region (field < 0) of the given bounds. The budget is 50 draws per
// requested point; blowing it means the body occupies almost none of the
// box.
func SampleInterior(field Field, bounds Bounds, n int, rng *rand.Rand) ([]Vec3, error) {
	points := make([]Vec3, 0, n)
	maxTries := n * interiorTriesPerPoint
	tries := 0
	for len(points) < n {
		if tries > maxTries {
			return nil, &SamplingExhaustedError{Tries: tries, Found: len(points), Want: n}
		}
		p := randomIn(rng, bounds)
		if field.Evaluate(p) < 0 {
			points = append(points, p)
		}
		tries++
	}
	return points, nil
}

// SampleSurface rejection-samples up to n points with |field| < eps. It
// gives up after maxTries draws; if fewer than n points were found by then
// the partial result is returned alongside a SamplingExhaustedError.
// Pass eps <= 0 or maxTries <= 0 for the defaults (1e-3, one million).
func SampleSurface(field Field, bounds Bounds, n int, eps float64, maxTries int, rng *rand.Rand) ([]Vec3, error) {
	if eps <= 0 {
		eps = surfaceSampleEpsilon
	}
	if maxTries <= 0 {
		maxTries = surfaceSampleMaxTries
	}
	points := make([]Vec3, 0, n)
	tries := 0
	for len(points) < n && tries < maxTries {
		p := randomIn(rng, bounds)
		if math.Abs(field.Evaluate(p)) < eps {
			points = append(points, p)
		}
		tries++
	}
	if len(points) < n {
		return points, &SamplingExhaustedError{Tries: tries, Found: len(points), Want: n}
	}
	return points, nil
}

// ProjectToSurface pushes p toward the zero level set with one Newton step
// using a central-difference gradient: p' = p - f*grad/|grad|^2. Points
// already within tolerance of the surface, or sitting on a degenerate
// gradient, are returned unchanged.
func ProjectToSurface(field Field, p Vec3) Vec3 {
	f0 := field.Evaluate(p)
	if math.Abs(f0) < projectTolerance {
		return p
	}

	d := projectDelta
	gx := (field.Evaluate(Vec3{p.X + d, p.Y, p.Z}) - field.Evaluate(Vec3{p.X - d, p.Y, p.Z})) / (2 * d)
	gy := (field.Evaluate(Vec3{p.X, p.Y + d, p.Z}) - field.Evaluate(Vec3{p.X, p.Y - d, p.Z})) / (2 * d)
	gz := (field.Evaluate(Vec3{p.X, p.Y, p.Z + d}) - field.Evaluate(Vec3{p.X, p.Y, p.Z - d})) / (2 * d)

	normSq := gx*gx + gy*gy + gz*gz
	if normSq < gradientFloor {
		return p
	}
	return Vec3{
		X: p.X - f0*gx/normSq,
		Y: p.Y - f0*gy/normSq,
		Z: p.Z - f0*gz/normSq,
	}
}

// GenerateFoamSeeds fills bounds with n uniformly distributed seeds and
// returns them in deterministic order for a given RNG seed. A convenience
// over SampleInterior with an always-inside field, used when a foam
// document records only its seed count and RNG seed.
func GenerateFoamSeeds(bounds Bounds, n int, seed int64) []Vec3 {
	rng := rand.New(rand.NewSource(seed))
	points := make([]Vec3, n)
	for i := range points {
		points[i] = randomIn(rng, bounds)
	}
	return points
}
