package polar

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

const tol = 1e-12

func TestPhi_Quadrants(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"positive x axis", 1, 0, 0},
		{"positive y axis", 0, 1, math.Pi / 2},
		{"negative x axis", -1, 0, math.Pi},
		{"negative y axis", 0, -1, 3 * math.Pi / 2},
		{"first quadrant diagonal", 1, 1, math.Pi / 4},
		{"second quadrant diagonal", -1, 1, 3 * math.Pi / 4},
		{"third quadrant diagonal", -1, -1, 5 * math.Pi / 4},
		{"fourth quadrant diagonal", 1, -1, 7 * math.Pi / 4},
		{"origin", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Phi(tt.x, tt.y)
			if math.Abs(got-tt.want) > tol {
				t.Errorf("Phi(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestPhi_RangeAndFinite(t *testing.T) {
	for ix := -10; ix <= 10; ix++ {
		for iy := -10; iy <= 10; iy++ {
			x, y := float64(ix)*0.37, float64(iy)*0.41
			got := Phi(x, y)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("Phi(%v, %v) is not finite: %v", x, y, got)
			}
			if got < 0 || got >= TwoPi {
				t.Fatalf("Phi(%v, %v) = %v outside [0, 2π)", x, y, got)
			}
		}
	}
}

func TestPhi_SignedZeroAxis(t *testing.T) {
	// -0 must take the y-axis branch rather than dividing.
	negZero := math.Copysign(0, -1)
	if got := Phi(negZero, 2); math.Abs(got-math.Pi/2) > tol {
		t.Errorf("Phi(-0, 2) = %v, want π/2", got)
	}
	if got := Phi(negZero, 0); got != 0 {
		t.Errorf("Phi(-0, 0) = %v, want 0", got)
	}
}

func TestToPolar(t *testing.T) {
	xs := []float64{3, 0, -1, 0}
	ys := []float64{4, -2, 0, 0}

	r, phi, err := ToPolar(xs, ys)
	if err != nil {
		t.Fatalf("ToPolar: %v", err)
	}

	wantR := []float64{5, 2, 1, 0}
	wantPhi := []float64{math.Atan(4.0 / 3.0), 3 * math.Pi / 2, math.Pi, 0}
	if !floats.EqualApprox(r, wantR, tol) {
		t.Errorf("r = %v, want %v", r, wantR)
	}
	if !floats.EqualApprox(phi, wantPhi, tol) {
		t.Errorf("phi = %v, want %v", phi, wantPhi)
	}
	if floats.HasNaN(phi) {
		t.Errorf("phi contains NaN: %v", phi)
	}
}

func TestToPolar_Empty(t *testing.T) {
	r, phi, err := ToPolar(nil, nil)
	if err != nil {
		t.Fatalf("ToPolar: %v", err)
	}
	if len(r) != 0 || len(phi) != 0 {
		t.Errorf("expected empty output, got r=%v phi=%v", r, phi)
	}
}

func TestToPolar_LengthMismatch(t *testing.T) {
	_, _, err := ToPolar([]float64{1, 2}, []float64{1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	if _, err := Transform([]float64{1}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Transform: expected ErrLengthMismatch, got %v", err)
	}
}

func TestTransform(t *testing.T) {
	c, err := Transform([]float64{0}, []float64{0})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if c.R[0] != 0 || c.Phi[0] != 0 {
		t.Errorf("origin mapped to (%v, %v), want (0, 0)", c.R[0], c.Phi[0])
	}
}
