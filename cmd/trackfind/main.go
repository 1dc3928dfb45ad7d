// Command trackfind generates synthetic detector events, assigns hits to
// tracks and reports how well the true tracks were recovered.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/banshee-data/trackfinder/internal/config"
	"github.com/banshee-data/trackfinder/internal/db"
	"github.com/banshee-data/trackfinder/internal/evaluation"
	"github.com/banshee-data/trackfinder/internal/event"
	"github.com/banshee-data/trackfinder/internal/monitoring"
	"github.com/banshee-data/trackfinder/internal/pipeline"
	"github.com/banshee-data/trackfinder/internal/polar"
	"github.com/banshee-data/trackfinder/internal/synthetic"
	"github.com/banshee-data/trackfinder/internal/timeutil"
	"github.com/banshee-data/trackfinder/internal/version"
)

type options struct {
	configPath  string
	events      int
	tracks      int
	pairs       int
	layers      int
	noise       int
	seed        int64
	dbPath      string
	debug       bool
	showVersion bool
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.configPath, "config", "", "Tuning config JSON (defaults built in)")
	fs.IntVar(&o.events, "events", 100, "Number of synthetic events")
	fs.IntVar(&o.tracks, "tracks", 5, "Tracks per event")
	fs.IntVar(&o.pairs, "pairs", 1, "Tracks per event given a close partner")
	fs.IntVar(&o.layers, "layers", 9, "Detector layers")
	fs.IntVar(&o.noise, "noise", 10, "Noise hits per event")
	fs.Int64Var(&o.seed, "seed", 1, "Random seed")
	fs.StringVar(&o.dbPath, "db", "", "SQLite file to record the run in (disabled if empty)")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.events < 0 {
		return o, fmt.Errorf("-events must be >= 0, got %d", o.events)
	}
	return o, nil
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

// run generates events, predicts labels in parallel, scores them and
// optionally records the run.
func run(ctx context.Context, o options, logger *zap.Logger) (evaluation.Summary, error) {
	return runWithClock(ctx, o, logger, timeutil.RealClock{})
}

func runWithClock(ctx context.Context, o options, logger *zap.Logger, clock timeutil.Clock) (evaluation.Summary, error) {
	tuning, err := loadTuning(o.configPath)
	if err != nil {
		return evaluation.Summary{}, err
	}
	cfg := pipeline.ConfigFromTuning(tuning)

	p, err := pipeline.New(cfg)
	if err != nil {
		return evaluation.Summary{}, err
	}

	gen := synthetic.NewGenerator(o.seed)
	gen.Tracks = o.tracks
	gen.Pairs = o.pairs
	gen.Layers = o.layers
	gen.NoiseHits = o.noise

	events, truths, err := gen.Events(o.events)
	if err != nil {
		return evaluation.Summary{}, fmt.Errorf("generate events: %w", err)
	}

	if timeout := tuning.GetBatchTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := clock.Now()
	labels, err := p.PredictBatch(ctx, events, tuning.GetBatchWorkers())
	if err != nil {
		return evaluation.Summary{}, fmt.Errorf("predict: %w", err)
	}
	elapsed := clock.Since(start)

	scores := make([]evaluation.Score, len(events))
	for i := range events {
		scores[i], err = evaluation.ScoreEvent(labels[i], truths[i])
		if err != nil {
			return evaluation.Summary{}, fmt.Errorf("score event %d: %w", i, err)
		}
	}
	summary := evaluation.Summarise(scores)

	logger.Info("run complete",
		zap.Int("events", summary.Events),
		zap.Int("true_tracks", summary.TrueTracks),
		zap.Int("matched", summary.Matched),
		zap.Float64("track_efficiency", summary.TrackEfficiency),
		zap.Float64("mean_purity", summary.MeanPurity),
		zap.Float64("mean_fake_rate", summary.MeanFakeRate),
		zap.Duration("elapsed", elapsed),
	)

	if o.dbPath != "" {
		runID, err := record(o.dbPath, clock, cfg, events, labels, truths, summary)
		if err != nil {
			return summary, err
		}
		logger.Info("run recorded", zap.String("db", o.dbPath), zap.String("run_id", runID))
	}

	return summary, nil
}

func record(path string, clock timeutil.Clock, cfg pipeline.Config, events []event.Event, labels [][]int, truths []synthetic.Truth, summary evaluation.Summary) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", err
	}
	defer database.Close()

	params, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	sum, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	store := db.NewRunStoreWithClock(database.DB, clock)
	run := &db.Run{Version: version.Version, ParamsJSON: params}
	if err := store.InsertRun(run); err != nil {
		return "", err
	}

	for i, ev := range events {
		coords, err := polar.Transform(ev.Xs(), ev.Ys())
		if err != nil {
			return run.RunID, err
		}
		if err := store.InsertEventLabels(run.RunID, i, ev.Layers(), coords.Phi, labels[i], truths[i]); err != nil {
			return run.RunID, err
		}
	}

	if err := store.CompleteRun(run.RunID, len(events), sum); err != nil {
		return run.RunID, err
	}
	return run.RunID, nil
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if o.showVersion {
		fmt.Println(version.String())
		return
	}

	logger, err := monitoring.Init(o.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, o, logger); err != nil {
		logger.Fatal("trackfind failed", zap.Error(err))
	}
}
