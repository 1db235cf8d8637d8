package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadOverridesSelectively(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yaml")
	body := `
thresholds:
  lower: 0.25
  upper: 0.75
fetch_timeout: 500ms
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Thresholds.Lower != 0.25 || cfg.Thresholds.Upper != 0.75 {
		t.Fatalf("thresholds not overridden: %+v", cfg.Thresholds)
	}
	if cfg.FetchTimeout.Std() != 500*time.Millisecond {
		t.Fatalf("fetch_timeout not overridden: %v", cfg.FetchTimeout)
	}
	// Untouched fields keep defaults.
	if cfg.ContestedConfidenceCap != 0.7 {
		t.Fatalf("cap should keep its default, got %v", cfg.ContestedConfidenceCap)
	}
	if cfg.Weights != Default().Weights {
		t.Fatalf("weights should keep defaults, got %+v", cfg.Weights)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"inverted thresholds": "thresholds:\n  lower: 0.8\n  upper: 0.2\n",
		"bad weights":         "weights:\n  edge: 0.9\n  node: 0.9\n  structural: 0.1\n  retrieval: 0.1\n",
		"zero timeout":        "fetch_timeout: 0s\n",
		"oversized cap":       "contested_confidence_cap: 1.5\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "filter.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file should error")
	}
}
