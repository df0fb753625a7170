package config

import (
	"fmt"
	"time"
)

// OutputConfig controls where proposals are written.
type OutputConfig struct {
	Dir string `json:"dir"`
	// Expiry is added to the run's reference time to compute the proposal expiry.
	Expiry    time.Duration `json:"expiry"`
	Overwrite bool          `json:"overwrite"`
	// Manifest optionally receives a CSV summary of the generated files.
	Manifest string `json:"manifest"`
}

// Validate checks mandatory fields.
func (c OutputConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.Expiry <= 0 {
		return fmt.Errorf("expiry must be positive")
	}
	return nil
}

// MetricsConfig defines where run metrics are exported.
type MetricsConfig struct {
	// Textfile is a Prometheus textfile collector path. Empty disables metrics.
	Textfile string `json:"textfile"`
}
