package entropy

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/validity-filter/internal/evidence"
)

// #region drift-source

// DriftSource supplies the rate of structural change over a time window,
// computed from historical graph snapshots. Implementations that have no
// real history should return an error so the aggregator falls back to the
// shape-based estimate.
type DriftSource interface {
	StructuralDrift(window time.Duration) (float64, error)
}

// SnapshotSource reports how many historical graph snapshots exist inside
// a lookback window.
type SnapshotSource interface {
	SnapshotCount(window time.Duration) (int, error)
}

// snapshotDriftIndicator is the fixed drift value reported when snapshot
// history exists. A real windowed drift metric needs a diffable snapshot
// format first; until then history only signals "structure has churned".
const snapshotDriftIndicator = 0.3

// SnapshotDrift adapts a SnapshotSource into a DriftSource. Fewer than two
// snapshots in the window is an error so the aggregator falls back to the
// shape estimate.
type SnapshotDrift struct {
	Source SnapshotSource
}

// StructuralDrift implements DriftSource.
func (s SnapshotDrift) StructuralDrift(window time.Duration) (float64, error) {
	n, err := s.Source.SnapshotCount(window)
	if err != nil {
		return 0, err
	}
	if n < 2 {
		return 0, fmt.Errorf("insufficient snapshot history: %d in window", n)
	}
	return snapshotDriftIndicator, nil
}

// #endregion drift-source

// #region structural-estimate

// stableDensity is the edge density empirically associated with a settled
// fragment; distance from it is normalized by the maximum possible distance.
const (
	stableDensity    = 0.3
	maxDensityOffset = 0.7
)

// StructuralEntropy estimates topology instability from the fragment's
// current shape: edge-type diversity, distance from the stable density, and
// the fraction of edges lacking temporal markers. This is the snapshot-free
// fallback; when a drift source is available the aggregator prefers it.
func StructuralEntropy(frag evidence.GraphFragment) float64 {
	if frag.Empty() {
		return 0.0
	}
	edges := frag.Edges
	if len(edges) == 0 {
		// Nodes with no relationships at all: structure unknown.
		return 0.5
	}

	// 1. Edge-type diversity: many relationship kinds in one fragment
	// suggest a contested domain.
	types := make(map[string]bool, len(edges))
	for _, e := range edges {
		types[e.Type] = true
	}
	typeEntropy := float64(len(types)) / float64(len(edges))

	// 2. Density distance from the stable point.
	densityEntropy := 0.5
	if n := len(frag.Nodes); n > 1 {
		maxEdges := float64(n*(n-1)) / 2.0
		density := float64(len(edges)) / maxEdges
		densityEntropy = absFloat(density-stableDensity) / maxDensityOffset
	}

	// 3. Fraction of edges carrying no temporal marker.
	marked := 0
	for _, e := range edges {
		if e.HasTemporalMarker() {
			marked++
		}
	}
	hasTemporal := float64(marked) / float64(len(edges))

	score := 0.4*typeEntropy + 0.3*densityEntropy + 0.3*(1.0-hasTemporal)
	return evidence.Clamp(score)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion structural-estimate
