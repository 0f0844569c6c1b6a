//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"errors"
	"math/rand"
	"testing"
)

func TestVoronoiFoam(t *testing.T) {
	seeds := []Vec3{{X: -1}, {X: 1}}

	foam, err := NewVoronoiFoam(seeds, 0)
	if err != nil {
		t.Fatalf("NewVoronoiFoam: %v", err)
	}

	// On the bisector plane both distances agree
	if v := foam.Evaluate(Vec3{}); !near(v, 0) {
		t.Errorf("midpoint: expected 0, got %v", v)
	}
	if v := foam.Evaluate(Vec3{Y: 3}); !near(v, 0) {
		t.Errorf("bisector: expected 0, got %v", v)
	}

	// Quarter point: d1 = 0.5, d2 = 1.5, (d2-d1)/2 = 0.5
	if v := foam.Evaluate(Vec3{X: 0.5}); !near(v, 0.5) {
		t.Errorf("quarter point: expected %v, got %v", 0.5, v)
	}
	if v := foam.Evaluate(Vec3{X: -0.5}); !near(v, 0.5) {
		t.Errorf("quarter point: expected %v, got %v", 0.5, v)
	}

	// Thickness shifts the wall below zero
	thick, err := NewVoronoiFoam(seeds, 0.2)
	if err != nil {
		t.Fatalf("NewVoronoiFoam: %v", err)
	}
	if v := thick.Evaluate(Vec3{}); !near(v, -0.2) {
		t.Errorf("wall center: expected %v, got %v", -0.2, v)
	}
}

func TestVoronoiFoamTooFewSeeds(t *testing.T) {
	var invalid *InvalidParameterError
	if _, err := NewVoronoiFoam([]Vec3{{X: 1}}, 0.1); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParameterError, got %v", err)
	}
	if _, err := NewVoronoiFoam(nil, 0.1); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParameterError, got %v", err)
	}
}

func TestGenerateFoamSeeds(t *testing.T) {
	bounds := Bounds{XMin: -5, XMax: 5, YMin: 0, YMax: 10, ZMin: 2, ZMax: 4}

	seeds := GenerateFoamSeeds(bounds, 100, 42)
	if len(seeds) != 100 {
		t.Fatalf("expected 100 seeds, got %d", len(seeds))
	}
	for _, s := range seeds {
		if s.X < bounds.XMin || s.X > bounds.XMax ||
			s.Y < bounds.YMin || s.Y > bounds.YMax ||
			s.Z < bounds.ZMin || s.Z > bounds.ZMax {
			t.Fatalf("seed %+v outside bounds", s)
		}
	}

	// Deterministic for a fixed seed
	again := GenerateFoamSeeds(bounds, 100, 42)
	for n := range seeds {
		if seeds[n] != again[n] {
			t.Fatalf("seed %d differs between runs", n)
		}
	}
}

func TestSampleInterior(t *testing.T) {
	sphere, _ := NewSphere(Vec3{}, 5.0)
	bounds := Bounds{XMin: -5, XMax: 5, YMin: -5, YMax: 5, ZMin: -5, ZMax: 5}

	rng := rand.New(rand.NewSource(1))
	points, err := SampleInterior(sphere, bounds, 50, rng)
	if err != nil {
		t.Fatalf("SampleInterior: %v", err)
	}
	if len(points) != 50 {
		t.Fatalf("expected 50 points, got %d", len(points))
	}
	for _, p := range points {
		if sphere.Evaluate(p) > 0 {
			t.Fatalf("point %+v is outside the field", p)
		}
	}
}

func TestSampleInteriorExhausted(t *testing.T) {
	// A field with no interior anywhere
	sphere, _ := NewSphere(Vec3{X: 1000}, 1.0)
	bounds := Bounds{XMin: -5, XMax: 5, YMin: -5, YMax: 5, ZMin: -5, ZMax: 5}

	rng := rand.New(rand.NewSource(1))
	_, err := SampleInterior(sphere, bounds, 10, rng)
	var exhausted *SamplingExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected SamplingExhaustedError, got %v", err)
	}
	if exhausted.Want != 10 {
		t.Errorf("want: expected 10, got %d", exhausted.Want)
	}
}

func TestSampleSurface(t *testing.T) {
	sphere, _ := NewSphere(Vec3{}, 5.0)
	bounds := Bounds{XMin: -6, XMax: 6, YMin: -6, YMax: 6, ZMin: -6, ZMax: 6}

	rng := rand.New(rand.NewSource(7))
	points, err := SampleSurface(sphere, bounds, 20, 0.05, 1000000, rng)
	if err != nil {
		t.Fatalf("SampleSurface: %v", err)
	}
	if len(points) != 20 {
		t.Fatalf("expected 20 points, got %d", len(points))
	}
	for _, p := range points {
		if v := sphere.Evaluate(p); v < -0.05 || v > 0.05 {
			t.Fatalf("point %+v is %v from the surface", p, v)
		}
	}
}

func TestProjectToSurface(t *testing.T) {
	sphere, _ := NewSphere(Vec3{}, 5.0)

	projected := ProjectToSurface(sphere, Vec3{X: 8})
	if v := sphere.Evaluate(projected); v < -1e-5 || v > 1e-5 {
		t.Fatalf("projected point is %v from the surface", v)
	}
}
