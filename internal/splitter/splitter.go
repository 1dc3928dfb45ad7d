// Package splitter separates pairs of tracks that angular clustering merged
// into one cluster.
//
// Within one detector layer a crossing of two tracks leaves two hits. Taking
// the lowest-phi hit of every layer as one track and the highest-phi hit of
// every multi-hit layer as the other separates the interleaved pair, provided
// the ambiguity recurs on enough layers.
package splitter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/banshee-data/trackfinder/internal/cluster"
	"github.com/banshee-data/trackfinder/internal/event"
	"github.com/banshee-data/trackfinder/internal/polar"
	"gonum.org/v1/gonum/floats"
)

// DefaultMinAmbiguousLayers is the number of layers that must each hold two
// or more hits of one cluster before that cluster is split. A single
// ambiguous layer is usually unrelated noise next to a genuine track.
const DefaultMinAmbiguousLayers = 2

// ErrLengthMismatch is returned when labels, layers and phi differ in length.
var ErrLengthMismatch = errors.New("splitter input length mismatch")

// Splitter relabels the second track of merged clusters. The zero value
// uses DefaultMinAmbiguousLayers.
type Splitter struct {
	MinAmbiguousLayers int
}

// New returns a Splitter with the default threshold.
func New() Splitter {
	return Splitter{MinAmbiguousLayers: DefaultMinAmbiguousLayers}
}

// Relabel records one split: Hits moved from cluster From to new id To.
type Relabel struct {
	From int
	To   int
	Hits []int
}

// Report is the outcome of a split pass.
type Report struct {
	Labels   []int
	Relabels []Relabel
}

func (s Splitter) threshold() int {
	if s.MinAmbiguousLayers <= 0 {
		return DefaultMinAmbiguousLayers
	}
	return s.MinAmbiguousLayers
}

// Split returns a refinement of labels in which every merged cluster has
// its second track moved to a fresh id. The input slice is not modified.
func (s Splitter) Split(labels, layers []int, phi []float64) ([]int, error) {
	r, err := s.SplitReport(labels, layers, phi)
	if err != nil {
		return nil, err
	}
	return r.Labels, nil
}

// SplitEvent is Split with layers and phi taken from the event's hits.
func (s Splitter) SplitEvent(labels []int, ev event.Event) ([]int, error) {
	_, phi, err := polar.ToPolar(ev.Xs(), ev.Ys())
	if err != nil {
		return nil, err
	}
	return s.Split(labels, ev.Layers(), phi)
}

// SplitReport is Split that also reports which hits moved.
func (s Splitter) SplitReport(labels, layers []int, phi []float64) (Report, error) {
	if len(labels) != len(layers) || len(labels) != len(phi) {
		return Report{}, fmt.Errorf("labels=%d layers=%d phi=%d: %w",
			len(labels), len(layers), len(phi), ErrLengthMismatch)
	}

	out := make([]int, len(labels))
	copy(out, labels)

	// Indices per cluster, in hit order.
	members := make(map[int][]int)
	for i, l := range labels {
		if l < cluster.Noise {
			return Report{}, fmt.Errorf("label %d at index %d is below the noise label", l, i)
		}
		if l == cluster.Noise {
			continue
		}
		members[l] = append(members[l], i)
	}
	if len(members) == 0 {
		return Report{Labels: out}, nil
	}

	ids := make([]int, 0, len(members))
	for l := range members {
		ids = append(ids, l)
	}
	sort.Ints(ids)
	nextID := ids[len(ids)-1] + 1

	var relabels []Relabel
	minLayers := s.threshold()
	for _, l := range ids {
		second := secondTrack(members[l], layers, phi)
		if len(second) < minLayers {
			continue
		}
		for _, idx := range second {
			out[idx] = nextID
		}
		relabels = append(relabels, Relabel{From: l, To: nextID, Hits: second})
		nextID++
	}

	return Report{Labels: out, Relabels: relabels}, nil
}

// secondTrack returns, for every layer of the cluster holding two or more
// hits, the hit with the largest phi. Ties in phi resolve by hit order.
func secondTrack(track []int, layers []int, phi []float64) []int {
	byLayer := make(map[int][]int)
	for _, idx := range track {
		byLayer[layers[idx]] = append(byLayer[layers[idx]], idx)
	}

	layerIDs := make([]int, 0, len(byLayer))
	for layer := range byLayer {
		layerIDs = append(layerIDs, layer)
	}
	sort.Ints(layerIDs)

	var second []int
	for _, layer := range layerIDs {
		hits := byLayer[layer]
		if len(hits) < 2 {
			continue // single hit belongs to the first track only
		}

		layerPhi := make([]float64, len(hits))
		for i, idx := range hits {
			layerPhi[i] = phi[idx]
		}
		order := make([]int, len(hits))
		floats.ArgsortStable(layerPhi, order)

		second = append(second, hits[order[len(order)-1]])
	}
	return second
}
