package pipeline

import (
	"fmt"

	"github.com/banshee-data/trackfinder/internal/cluster"
	"github.com/banshee-data/trackfinder/internal/config"
	"github.com/banshee-data/trackfinder/internal/event"
	"github.com/banshee-data/trackfinder/internal/monitoring"
	"github.com/banshee-data/trackfinder/internal/polar"
	"github.com/banshee-data/trackfinder/internal/splitter"
)

// Config holds the construction-time parameters of a Pipeline.
type Config struct {
	Eps                float64 `json:"eps"`                  // angular neighbourhood radius, radians
	MinPts             int     `json:"min_pts"`              // minimum neighbourhood size of a core hit
	CircularPhi        bool    `json:"circular_phi"`         // treat phi as periodic when clustering
	MinAmbiguousLayers int     `json:"min_ambiguous_layers"` // splitting threshold
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Eps:                cluster.DefaultEps,
		MinPts:             cluster.DefaultMinPts,
		CircularPhi:        true,
		MinAmbiguousLayers: splitter.DefaultMinAmbiguousLayers,
	}
}

// ConfigFromTuning builds a Config from a loaded tuning file.
func ConfigFromTuning(t *config.TuningConfig) Config {
	return Config{
		Eps:                t.GetClusterEps(),
		MinPts:             t.GetClusterMinPts(),
		CircularPhi:        t.GetCircularPhi(),
		MinAmbiguousLayers: t.GetMinAmbiguousLayers(),
	}
}

// ClusterParams returns the DBSCAN parameters described by c.
func (c Config) ClusterParams() cluster.Params {
	p := cluster.Params{Eps: c.Eps, MinPts: c.MinPts}
	if c.CircularPhi {
		p.Period = polar.TwoPi
	}
	return p
}

// Pipeline assigns hits to track candidates.
type Pipeline struct {
	angular  *cluster.AngularClusterer
	splitter splitter.Splitter
}

// Result is the full outcome of one Run.
type Result struct {
	Labels   []int
	Coords   polar.Coordinates
	Relabels []splitter.Relabel
}

// New builds a Pipeline backed by DBSCAN.
func New(cfg Config) (*Pipeline, error) {
	if cfg.MinAmbiguousLayers < 1 {
		return nil, fmt.Errorf("min ambiguous layers must be at least 1, got %d", cfg.MinAmbiguousLayers)
	}
	db, err := cluster.NewDBSCAN(cfg.ClusterParams())
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return NewWithClusterer(db, splitter.Splitter{MinAmbiguousLayers: cfg.MinAmbiguousLayers}), nil
}

// NewWithClusterer builds a Pipeline around any clustering primitive.
func NewWithClusterer(c cluster.Clusterer, s splitter.Splitter) *Pipeline {
	return &Pipeline{
		angular:  cluster.NewAngularClusterer(c),
		splitter: s,
	}
}

// Fit is a no-op: the algorithm is unsupervised and learns nothing from
// labelled data. It exists so the Pipeline can stand in for trainable
// models.
func (p *Pipeline) Fit(ev event.Event, target []int) error {
	return nil
}

// Predict returns one label per hit: Noise or a track id.
func (p *Pipeline) Predict(ev event.Event) ([]int, error) {
	r, err := p.Run(ev)
	if err != nil {
		return nil, err
	}
	return r.Labels, nil
}

// PredictRows is Predict over a row table laid out as layer, unused, x, y.
func (p *Pipeline) PredictRows(rows [][]float64) ([]int, error) {
	ev, err := event.FromRows(rows)
	if err != nil {
		return nil, err
	}
	return p.Predict(ev)
}

// Run maps, clusters and splits one event.
func (p *Pipeline) Run(ev event.Event) (Result, error) {
	coords, err := polar.Transform(ev.Xs(), ev.Ys())
	if err != nil {
		return Result{}, err
	}

	labels, err := p.angular.Cluster(coords.Phi)
	if err != nil {
		return Result{}, err
	}

	report, err := p.splitter.SplitReport(labels, ev.Layers(), coords.Phi)
	if err != nil {
		return Result{}, fmt.Errorf("split: %w", err)
	}

	monitoring.Debugf("event: %d hits, %d clusters, %d splits",
		len(ev), countClusters(labels), len(report.Relabels))

	return Result{
		Labels:   report.Labels,
		Coords:   coords,
		Relabels: report.Relabels,
	}, nil
}

// countClusters returns the number of distinct non-noise labels.
func countClusters(labels []int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		if l != cluster.Noise {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}
