package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Fallback values used by the Get* methods when a field is unset.
const (
	defaultClusterEps         = 0.06
	defaultClusterMinPts      = 5
	defaultCircularPhi        = true
	defaultMinAmbiguousLayers = 2
	defaultBatchWorkers       = 4
	defaultBatchTimeout       = 30 * time.Second
)

// TuningConfig represents the root configuration for the track finder.
// Pointer fields distinguish "unset" from a zero value so partial files
// fall back to defaults field by field.
type TuningConfig struct {
	// Angular clustering
	ClusterEps    *float64 `json:"cluster_eps,omitempty"` // radians
	ClusterMinPts *int     `json:"cluster_min_pts,omitempty"`
	CircularPhi   *bool    `json:"circular_phi,omitempty"`

	// Track splitting
	MinAmbiguousLayers *int `json:"min_ambiguous_layers,omitempty"`

	// Batch processing
	BatchWorkers *int    `json:"batch_workers,omitempty"`
	BatchTimeout *string `json:"batch_timeout,omitempty"` // duration string like "30s"
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		ClusterEps:         ptrFloat64(defaultClusterEps),
		ClusterMinPts:      ptrInt(defaultClusterMinPts),
		CircularPhi:        ptrBool(defaultCircularPhi),
		MinAmbiguousLayers: ptrInt(defaultMinAmbiguousLayers),
		BatchWorkers:       ptrInt(defaultBatchWorkers),
		BatchTimeout:       ptrString(defaultBatchTimeout.String()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file fall back to defaults through the Get* methods.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ClusterEps != nil {
		eps := *c.ClusterEps
		if math.IsNaN(eps) || eps <= 0 || eps >= math.Pi {
			return fmt.Errorf("cluster_eps must be in (0, π), got %f", eps)
		}
	}

	if c.ClusterMinPts != nil && *c.ClusterMinPts < 1 {
		return fmt.Errorf("cluster_min_pts must be at least 1, got %d", *c.ClusterMinPts)
	}

	if c.MinAmbiguousLayers != nil && *c.MinAmbiguousLayers < 1 {
		return fmt.Errorf("min_ambiguous_layers must be at least 1, got %d", *c.MinAmbiguousLayers)
	}

	if c.BatchWorkers != nil && *c.BatchWorkers < 1 {
		return fmt.Errorf("batch_workers must be at least 1, got %d", *c.BatchWorkers)
	}

	if c.BatchTimeout != nil && *c.BatchTimeout != "" {
		d, err := time.ParseDuration(*c.BatchTimeout)
		if err != nil {
			return fmt.Errorf("invalid batch_timeout '%s': %w", *c.BatchTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("batch_timeout must be non-negative, got %s", d)
		}
	}

	return nil
}

// GetClusterEps returns the angular neighbourhood radius in radians.
func (c *TuningConfig) GetClusterEps() float64 {
	if c.ClusterEps == nil {
		return defaultClusterEps
	}
	return *c.ClusterEps
}

// GetClusterMinPts returns the minimum neighbourhood size of a core hit.
func (c *TuningConfig) GetClusterMinPts() int {
	if c.ClusterMinPts == nil {
		return defaultClusterMinPts
	}
	return *c.ClusterMinPts
}

// GetCircularPhi reports whether clustering treats phi as periodic.
func (c *TuningConfig) GetCircularPhi() bool {
	if c.CircularPhi == nil {
		return defaultCircularPhi
	}
	return *c.CircularPhi
}

// GetMinAmbiguousLayers returns the splitting threshold.
func (c *TuningConfig) GetMinAmbiguousLayers() int {
	if c.MinAmbiguousLayers == nil {
		return defaultMinAmbiguousLayers
	}
	return *c.MinAmbiguousLayers
}

// GetBatchWorkers returns the number of concurrent event workers.
func (c *TuningConfig) GetBatchWorkers() int {
	if c.BatchWorkers == nil {
		return defaultBatchWorkers
	}
	return *c.BatchWorkers
}

// GetBatchTimeout parses and returns BatchTimeout. Zero means no timeout.
func (c *TuningConfig) GetBatchTimeout() time.Duration {
	if c.BatchTimeout == nil || *c.BatchTimeout == "" {
		return defaultBatchTimeout
	}
	d, err := time.ParseDuration(*c.BatchTimeout)
	if err != nil {
		return defaultBatchTimeout // default on parse error
	}
	return d
}
