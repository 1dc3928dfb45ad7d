package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultEps is the default neighbourhood radius in radians.
	DefaultEps = 0.06
	// DefaultMinPts is the default minimum neighbourhood size.
	DefaultMinPts = 5
	// EstimatedPointsPerCell is used for initial grid capacity estimation.
	EstimatedPointsPerCell = 4
)

// unclassified marks points not yet visited by a DBSCAN run.
const unclassified = -2

// DefaultParams returns the default parameters on a plain line.
func DefaultParams() Params {
	return Params{
		Eps:    DefaultEps,
		MinPts: DefaultMinPts,
	}
}

// DBSCAN implements Clusterer with density-based clustering over a single
// feature. Cluster ids are issued from 0 in the order of the lowest-index
// core point of each cluster, so output depends only on the input values.
type DBSCAN struct {
	params Params
}

// NewDBSCAN creates a DBSCAN clusterer with the given parameters.
func NewDBSCAN(params Params) (*DBSCAN, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &DBSCAN{params: params}, nil
}

// NewDefaultDBSCAN creates a DBSCAN clusterer with default parameters.
func NewDefaultDBSCAN() *DBSCAN {
	return &DBSCAN{params: DefaultParams()}
}

// GetParams returns the current clustering parameters.
func (c *DBSCAN) GetParams() Params {
	return c.params
}

// SetParams replaces the clustering parameters.
func (c *DBSCAN) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	c.params = params
	return nil
}

// Fit labels each feature value.
func (c *DBSCAN) Fit(features []float64) ([]int, error) {
	n := len(features)
	labels := make([]int, n)
	if n == 0 {
		return labels, nil
	}
	if floats.HasNaN(features) {
		return nil, fmt.Errorf("dbscan: features contain NaN")
	}

	p := c.params
	values := features
	if p.Period > 0 {
		values = make([]float64, n)
		for i, v := range features {
			if math.IsInf(v, 0) {
				return nil, fmt.Errorf("dbscan: feature %d is infinite", i)
			}
			values[i] = reduce(v, p.Period)
		}
	} else {
		for i, v := range features {
			if math.IsInf(v, 0) {
				return nil, fmt.Errorf("dbscan: feature %d is infinite", i)
			}
		}
	}

	index := NewLineIndex(p.Eps, p.Period)
	index.Build(values)

	for i := range labels {
		labels[i] = unclassified
	}

	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != unclassified {
			continue
		}

		neighbors := index.RegionQuery(values, i, p.Eps)
		if len(neighbors) < p.MinPts {
			labels[i] = Noise
			continue
		}

		expandCluster(values, index, labels, i, neighbors, clusterID, p.Eps, p.MinPts)
		clusterID++
	}

	return labels, nil
}

// expandCluster grows a cluster outward from a core point.
func expandCluster(values []float64, index *LineIndex, labels []int,
	seedIdx int, neighbors []int, clusterID int, eps float64, minPts int) {

	labels[seedIdx] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == Noise {
			labels[idx] = clusterID // border point
			continue
		}
		if labels[idx] != unclassified {
			continue
		}

		labels[idx] = clusterID
		newNeighbors := index.RegionQuery(values, idx, eps)
		if len(newNeighbors) >= minPts {
			neighbors = append(neighbors, newNeighbors...)
		}
	}
}

// Verify at compile time that *DBSCAN implements Clusterer.
var _ Clusterer = (*DBSCAN)(nil)
