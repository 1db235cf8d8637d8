package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/validity-filter/internal/entropy"
	"github.com/danielpatrickdp/validity-filter/internal/regime"
)

// #region config

// Config holds the tunable parameters of the filter. All fields have
// working defaults; a YAML file overrides them selectively.
type Config struct {
	Weights         entropy.Weights   `yaml:"weights"`
	Thresholds      regime.Thresholds `yaml:"thresholds"`
	TransitionWidth float64           `yaml:"transition_width"`

	// ContestedConfidenceCap bounds reported confidence in the contested
	// regime so that mid-band classifications never read as certainty.
	ContestedConfidenceCap float64 `yaml:"contested_confidence_cap"`

	// FetchTimeout bounds the knowledge-graph subgraph fetch.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// DriftWindow is the lookback window for structural drift queries.
	DriftWindow Duration `yaml:"drift_window"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Weights:                entropy.DefaultWeights(),
		Thresholds:             regime.DefaultThresholds(),
		TransitionWidth:        regime.DefaultTransitionWidth,
		ContestedConfidenceCap: 0.7,
		FetchTimeout:           Duration(2 * time.Second),
		DriftWindow:            Duration(30 * 24 * time.Hour),
	}
}

// #endregion config

// #region load

// Load reads a YAML config file and validates the result. Fields absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if err := entropy.ValidateWeights(c.Weights); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.TransitionWidth < 0 {
		return fmt.Errorf("transition_width must be non-negative, got %v", c.TransitionWidth)
	}
	if c.ContestedConfidenceCap <= 0 || c.ContestedConfidenceCap > 1 {
		return fmt.Errorf("contested_confidence_cap must be in (0,1], got %v", c.ContestedConfidenceCap)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", c.FetchTimeout)
	}
	if c.DriftWindow <= 0 {
		return fmt.Errorf("drift_window must be positive, got %v", c.DriftWindow)
	}
	return nil
}

// #endregion load
