//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"errors"
	"testing"
)

func TestGyroid(t *testing.T) {
	lambda := 10.0
	thickness := 0.5

	gyroid, err := NewGyroid(lambda, thickness)
	if err != nil {
		t.Fatalf("NewGyroid: %v", err)
	}

	if v := gyroid.Evaluate(Vec3{}); !near(v, -thickness) {
		t.Errorf("origin: expected %v, got %v", -thickness, v)
	}

	// At (l/8, l/8, l/8) every term is sin(pi/4)*cos(pi/4) = 1/2
	p := Vec3{X: lambda / 8, Y: lambda / 8, Z: lambda / 8}
	if v := gyroid.Evaluate(p); !near(v, 1.5-thickness) {
		t.Errorf("eighth cell: expected %v, got %v", 1.5-thickness, v)
	}

	// Periodic in every axis
	q := p.Add(Vec3{X: lambda, Y: lambda, Z: lambda})
	if a, b := gyroid.Evaluate(p), gyroid.Evaluate(q); !near(a, b) {
		t.Errorf("period: %v != %v", a, b)
	}
}

func TestSchwarzP(t *testing.T) {
	lambda := 10.0
	thickness := 0.2

	schwarz, err := NewSchwarzP(lambda, thickness)
	if err != nil {
		t.Fatalf("NewSchwarzP: %v", err)
	}

	if v := schwarz.Evaluate(Vec3{}); !near(v, 3.0-thickness) {
		t.Errorf("origin: expected %v, got %v", 3.0-thickness, v)
	}
	if v := schwarz.Evaluate(Vec3{X: lambda / 2}); !near(v, 1.0-thickness) {
		t.Errorf("half cell: expected %v, got %v", 1.0-thickness, v)
	}
}

func TestDiamond(t *testing.T) {
	lambda := 10.0
	thickness := 0.3

	diamond, err := NewDiamond(lambda, thickness)
	if err != nil {
		t.Fatalf("NewDiamond: %v", err)
	}

	if v := diamond.Evaluate(Vec3{}); !near(v, -thickness) {
		t.Errorf("origin: expected %v, got %v", -thickness, v)
	}

	// At (l/4, l/4, l/4) only the sin*sin*sin term survives
	p := Vec3{X: lambda / 4, Y: lambda / 4, Z: lambda / 4}
	if v := diamond.Evaluate(p); !near(v, 1.0-thickness) {
		t.Errorf("quarter cell: expected %v, got %v", 1.0-thickness, v)
	}
}

func TestLatticeInvalidCell(t *testing.T) {
	var invalid *InvalidParameterError

	_, err := NewGyroid(0, 0.5)
	if !errors.As(err, &invalid) {
		t.Fatalf("gyroid: expected InvalidParameterError, got %v", err)
	}
	_, err = NewSchwarzPCell(Vec3{X: 10, Y: -1, Z: 10}, 0.5)
	if !errors.As(err, &invalid) {
		t.Fatalf("schwarz: expected InvalidParameterError, got %v", err)
	}
	_, err = NewDiamond(-10, 0.5)
	if !errors.As(err, &invalid) {
		t.Fatalf("diamond: expected InvalidParameterError, got %v", err)
	}
}

func TestShell(t *testing.T) {
	lambda := 10.0
	thickness := 0.5

	shell, err := NewShell(PatternSchwarzP, Vec3{X: lambda, Y: lambda, Z: lambda}, thickness)
	if err != nil {
		t.Fatalf("NewShell: %v", err)
	}

	// At the origin the raw surface value is 3, so |3| - 0.5
	if v := shell.Evaluate(Vec3{}); !near(v, 2.5) {
		t.Errorf("origin: expected %v, got %v", 2.5, v)
	}

	// cos(pi/2) + cos(pi) + cos(pi/2) = -1, so |-1| - 0.5
	p := Vec3{X: lambda / 4, Y: lambda / 2, Z: lambda / 4}
	if v := shell.Evaluate(p); !near(v, 0.5) {
		t.Errorf("wall: expected %v, got %v", 0.5, v)
	}

	// The raw surface zero set sits inside the wall
	q := Vec3{X: lambda / 4, Y: lambda / 4, Z: lambda / 2}
	// cos(pi/2) + cos(pi/2) + cos(pi) = -1 as well; probe a true zero
	root := Vec3{X: lambda / 4, Y: lambda / 4, Z: lambda * 3 / 8}
	if shell.Evaluate(root) >= shell.Evaluate(q) {
		t.Errorf("expected the zero set to be deeper in the wall")
	}

	if _, err = NewShell(LatticePattern("bogus"), Vec3{X: 1, Y: 1, Z: 1}, 0.1); err == nil {
		t.Fatalf("expected error for unknown pattern")
	}
}
