package cluster

import "fmt"

// AngularClusterer groups hits by azimuth alone. Radius and layer are
// ignored at this stage; tracks that share an angular neighbourhood are
// merged and left for the splitter to separate.
type AngularClusterer struct {
	clusterer Clusterer
}

// NewAngularClusterer wraps the given clustering primitive.
func NewAngularClusterer(c Clusterer) *AngularClusterer {
	return &AngularClusterer{clusterer: c}
}

// Cluster returns the collaborator's labels for phi unchanged, after
// checking they honour the label contract.
func (a *AngularClusterer) Cluster(phi []float64) ([]int, error) {
	labels, err := a.clusterer.Fit(phi)
	if err != nil {
		return nil, fmt.Errorf("angular clustering: %w", err)
	}
	if len(labels) != len(phi) {
		return nil, fmt.Errorf("angular clustering: clusterer returned %d labels for %d points", len(labels), len(phi))
	}
	for i, l := range labels {
		if l < Noise {
			return nil, fmt.Errorf("angular clustering: label %d at index %d is below the noise label", l, i)
		}
	}
	return labels, nil
}
