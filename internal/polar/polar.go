// Package polar converts transverse hit positions to the radius and
// azimuth used as the track finder's clustering feature.
package polar

import (
	"errors"
	"fmt"
	"math"
)

// TwoPi is the period of the azimuth returned by Phi.
const TwoPi = 2 * math.Pi

// ErrLengthMismatch is returned when coordinate columns differ in length.
var ErrLengthMismatch = errors.New("coordinate length mismatch")

// Coordinates holds the per-hit polar pair. It is derived data and is
// recomputed on every call.
type Coordinates struct {
	R   []float64
	Phi []float64
}

// Phi returns the quadrant-corrected azimuth of (x, y) in [0, 2π).
//
// Points on the y axis are resolved by branch before any division, and the
// origin maps to 0.
func Phi(x, y float64) float64 {
	switch {
	case x > 0 && y >= 0:
		return math.Atan(y / x)
	case x > 0:
		// Fourth quadrant wraps up to stay inside [0, 2π).
		phi := math.Atan(y/x) + TwoPi
		if phi >= TwoPi {
			return 0
		}
		return phi
	case x < 0:
		return math.Atan(y/x) + math.Pi
	case y > 0:
		return math.Pi / 2
	case y < 0:
		return 3 * math.Pi / 2
	default:
		return 0
	}
}

// ToPolar maps cartesian columns to radius and azimuth element-wise.
func ToPolar(xs, ys []float64) (r, phi []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("x has %d values, y has %d: %w", len(xs), len(ys), ErrLengthMismatch)
	}

	r = make([]float64, len(xs))
	phi = make([]float64, len(xs))
	for i := range xs {
		r[i] = math.Hypot(xs[i], ys[i])
		phi[i] = Phi(xs[i], ys[i])
	}
	return r, phi, nil
}

// Transform is ToPolar returning the pair as Coordinates.
func Transform(xs, ys []float64) (Coordinates, error) {
	r, phi, err := ToPolar(xs, ys)
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{R: r, Phi: phi}, nil
}
