// Package synthetic generates detector events with known track membership
// for tests, demos and evaluation runs.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/banshee-data/trackfinder/internal/event"
)

// minGap is the smallest angular gap, in radians, kept between unrelated
// tracks and between any track and the 0/2π seam.
const minGap = 0.1

// Generator produces events of straight tracks fanning out from the origin.
type Generator struct {
	// Configuration
	Layers         int     // detector layers crossed by every track
	LayerSpacing   float64 // radial distance between layers; layer l sits at (l+1)*LayerSpacing
	Tracks         int     // independent tracks per event
	Pairs          int     // tracks that get a close partner track
	PairSeparation float64 // radians between a track and its partner
	PhiJitter      float64 // half-width of the uniform per-hit azimuth smear
	NoiseHits      int     // hits with no track, placed uniformly

	rng *rand.Rand
}

// Truth holds the true track id of each hit, -1 for noise.
type Truth []int

// NewGenerator creates a generator with reproducible output for seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Layers:         9,
		LayerSpacing:   1.0,
		Tracks:         5,
		Pairs:          1,
		PairSeparation: 0.01,
		PhiJitter:      0.002,
		NoiseHits:      10,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Validate reports configurations that cannot keep tracks apart.
func (g *Generator) Validate() error {
	if g.Layers < 1 || g.Tracks < 0 || g.Pairs < 0 || g.NoiseHits < 0 {
		return fmt.Errorf("synthetic: negative or empty counts (layers=%d tracks=%d pairs=%d noise=%d)",
			g.Layers, g.Tracks, g.Pairs, g.NoiseHits)
	}
	if g.Pairs > g.Tracks {
		return fmt.Errorf("synthetic: pairs %d exceed tracks %d", g.Pairs, g.Tracks)
	}
	if g.LayerSpacing <= 0 || g.PairSeparation < 0 || g.PhiJitter < 0 {
		return fmt.Errorf("synthetic: spacing, separation and jitter must be non-negative")
	}
	if g.PhiJitter*2 >= g.PairSeparation && g.Pairs > 0 {
		return fmt.Errorf("synthetic: jitter %v can reorder pairs %v apart", g.PhiJitter, g.PairSeparation)
	}
	if g.Tracks > 0 && g.slot()-g.PairSeparation-2*g.PhiJitter < 3*minGap {
		return fmt.Errorf("synthetic: %d tracks do not fit around the detector", g.Tracks)
	}
	return nil
}

// slot is the azimuth span reserved for each track.
func (g *Generator) slot() float64 {
	return 2 * math.Pi / float64(g.Tracks)
}

// Next generates one event and the true track id of each hit. Track i has
// id i; the partner of track i has id Tracks+i. Hits are shuffled.
func (g *Generator) Next() (event.Event, Truth, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}

	var ev event.Event
	var truth Truth

	if g.Tracks > 0 {
		slot := g.slot()
		span := slot - g.PairSeparation - 2*g.PhiJitter - 2*minGap
		offset := minGap + g.PhiJitter + g.rng.Float64()*span

		for i := 0; i < g.Tracks; i++ {
			phi := offset + float64(i)*slot
			ev, truth = g.appendTrack(ev, truth, phi, i)
			if i < g.Pairs {
				ev, truth = g.appendTrack(ev, truth, phi+g.PairSeparation, g.Tracks+i)
			}
		}
	}

	for i := 0; i < g.NoiseHits; i++ {
		layer := g.rng.Intn(g.Layers)
		phi := g.rng.Float64() * 2 * math.Pi
		ev = append(ev, g.hit(layer, phi))
		truth = append(truth, -1)
	}

	g.rng.Shuffle(len(ev), func(i, j int) {
		ev[i], ev[j] = ev[j], ev[i]
		truth[i], truth[j] = truth[j], truth[i]
	})

	if ev == nil {
		ev, truth = event.Event{}, Truth{}
	}
	return ev, truth, nil
}

// appendTrack adds one hit per layer along azimuth phi.
func (g *Generator) appendTrack(ev event.Event, truth Truth, phi float64, id int) (event.Event, Truth) {
	for layer := 0; layer < g.Layers; layer++ {
		jitter := (g.rng.Float64()*2 - 1) * g.PhiJitter
		ev = append(ev, g.hit(layer, phi+jitter))
		truth = append(truth, id)
	}
	return ev, truth
}

func (g *Generator) hit(layer int, phi float64) event.Hit {
	r := float64(layer+1) * g.LayerSpacing
	return event.Hit{
		Layer: layer,
		X:     r * math.Cos(phi),
		Y:     r * math.Sin(phi),
		Z:     g.rng.NormFloat64() * 0.1,
	}
}

// Events generates n events.
func (g *Generator) Events(n int) ([]event.Event, []Truth, error) {
	events := make([]event.Event, 0, n)
	truths := make([]Truth, 0, n)
	for i := 0; i < n; i++ {
		ev, truth, err := g.Next()
		if err != nil {
			return nil, nil, err
		}
		events = append(events, ev)
		truths = append(truths, truth)
	}
	return events, truths, nil
}
