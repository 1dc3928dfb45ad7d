package cluster

import (
	"errors"
	"fmt"
)

// Noise is the reserved label for points that belong to no cluster.
const Noise = -1

// ErrInvalidParams is returned for clustering parameters that cannot run.
var ErrInvalidParams = errors.New("invalid clustering parameters")

// Clusterer abstracts the density-based clustering primitive.
// Implementations take one real-valued feature per point and return one label
// per point: non-negative ids for cluster membership, Noise otherwise.
// Tests substitute deterministic stubs through ClustererFunc.
type Clusterer interface {
	Fit(features []float64) ([]int, error)
}

// ClustererFunc adapts an ordinary function to the Clusterer interface.
type ClustererFunc func(features []float64) ([]int, error)

// Fit calls f(features).
func (f ClustererFunc) Fit(features []float64) ([]int, error) {
	return f(features)
}

// Params holds density clustering parameters.
type Params struct {
	Eps    float64 // Neighbourhood radius in feature units (radians for phi)
	MinPts int     // Minimum neighbourhood size, self included, for a core point

	// Period makes the feature axis circular when non-zero, so that values
	// near Period neighbour values near 0. Eps must stay below Period/2.
	Period float64
}

// Validate reports whether the parameters can drive a clustering run.
func (p Params) Validate() error {
	if !(p.Eps > 0) {
		return fmt.Errorf("eps must be positive, got %v: %w", p.Eps, ErrInvalidParams)
	}
	if p.MinPts < 1 {
		return fmt.Errorf("min_pts must be at least 1, got %d: %w", p.MinPts, ErrInvalidParams)
	}
	if p.Period < 0 {
		return fmt.Errorf("period must be non-negative, got %v: %w", p.Period, ErrInvalidParams)
	}
	if p.Period > 0 && p.Eps >= p.Period/2 {
		return fmt.Errorf("eps %v must be below half the period %v: %w", p.Eps, p.Period, ErrInvalidParams)
	}
	return nil
}
