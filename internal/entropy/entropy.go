package entropy

import (
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/validity-filter/internal/evidence"
)

// #region alert-thresholds

// Per-component alert thresholds. Crossing one appends a warning to the
// result; warnings never change the numeric total.
const (
	edgeAlert       = 0.6
	nodeAlert       = 0.6
	structuralAlert = 0.5
	retrievalAlert  = 0.7
)

// maxConfidenceVariance is the largest possible variance of values bounded
// in [0,1]: a 50/50 split between 0 and 1.
const maxConfidenceVariance = 0.25

// #endregion alert-thresholds

// #region aggregator

// Aggregator combines the four sub-measures into one composite score.
// Immutable after construction; safe for concurrent use.
type Aggregator struct {
	weights Weights
	drift   DriftSource
	window  time.Duration
}

// NewAggregator validates the weights and returns an aggregator.
// drift may be nil: structural instability is then estimated from the
// fragment's shape alone.
func NewAggregator(w Weights, drift DriftSource, window time.Duration) (*Aggregator, error) {
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &Aggregator{weights: w, drift: drift, window: window}, nil
}

// ValidateWeights checks that all weights are non-negative and sum to 1.
func ValidateWeights(w Weights) error {
	for name, v := range map[string]float64{
		"edge": w.Edge, "node": w.Node, "structural": w.Structural, "retrieval": w.Retrieval,
	} {
		if v < 0 {
			return fmt.Errorf("entropy weight %q is negative: %v", name, v)
		}
	}
	sum := w.Edge + w.Node + w.Structural + w.Retrieval
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return fmt.Errorf("entropy weights must sum to 1, got %v", sum)
	}
	return nil
}

// #endregion aggregator

// #region compute

// Compute scores the evidence for one query. Never errors: empty fragments
// and empty retrieval are valid inputs and default toward caution, not
// toward stability.
func (a *Aggregator) Compute(frag evidence.GraphFragment, retrieved []evidence.RetrievedFragment) Result {
	frag = evidence.SanitizeFragment(frag)
	retrieved = evidence.SanitizeRetrieved(retrieved)

	hEdge := EdgeEntropy(frag)
	hNode := NodeEntropy(frag)
	hStructural := a.structural(frag)
	hRetrieval := RetrievalEntropy(retrieved)

	var warnings []string
	if hEdge > edgeAlert {
		warnings = append(warnings, "high relationship confidence variance")
	}
	if hNode > nodeAlert {
		warnings = append(warnings, "concept definitions show significant divergence")
	}
	if hStructural > structuralAlert {
		warnings = append(warnings, "high temporal instability in graph structure")
	}
	if hRetrieval > retrievalAlert {
		warnings = append(warnings, "high retrieval contradiction")
	}

	total := a.weights.Edge*hEdge +
		a.weights.Node*hNode +
		a.weights.Structural*hStructural +
		a.weights.Retrieval*hRetrieval

	return Result{
		Total: evidence.Clamp(total),
		Components: map[Component]float64{
			ComponentEdge:       hEdge,
			ComponentNode:       hNode,
			ComponentStructural: hStructural,
			ComponentRetrieval:  hRetrieval,
		},
		Warnings: warnings,
	}
}

func (a *Aggregator) structural(frag evidence.GraphFragment) float64 {
	if frag.Empty() {
		return 0.0
	}
	if a.drift != nil {
		d, err := a.drift.StructuralDrift(a.window)
		if err == nil {
			return evidence.Clamp(d)
		}
		log.Printf("[ENTROPY] structural drift unavailable, estimating from fragment shape: %v", err)
	}
	return StructuralEntropy(frag)
}

// #endregion compute

// #region edge-entropy

// EdgeEntropy derives relationship uncertainty from the variance and mean of
// edge confidences. Zero edges is vacuously stable.
func EdgeEntropy(frag evidence.GraphFragment) float64 {
	edges := frag.Edges
	if len(edges) == 0 {
		return 0.0
	}
	if len(edges) == 1 {
		return evidence.Clamp(1.0 - edges[0].Confidence)
	}

	confs := make([]float64, len(edges))
	for i, e := range edges {
		confs[i] = e.Confidence
	}
	mean, variance := meanVariance(confs)

	normalizedVariance := min(variance/maxConfidenceVariance, 1.0)
	score := 0.6*normalizedVariance + 0.4*(1.0-mean)
	return evidence.Clamp(score)
}

// #endregion edge-entropy

// #region node-entropy

// NodeEntropy derives concept uncertainty from definition disagreement,
// conflict markers, and node confidence, averaged across nodes.
func NodeEntropy(frag evidence.GraphFragment) float64 {
	nodes := frag.Nodes
	if len(nodes) == 0 {
		return 0.0
	}

	var sum float64
	for _, n := range nodes {
		// Multiple definitions for one concept, capped at 5
		var defEntropy float64
		if len(n.Definitions) > 1 {
			defEntropy = min(float64(len(n.Definitions))/5.0, 1.0)
		}
		// Conflict markers, capped at 3
		conflictEntropy := min(float64(len(n.Conflicts))/3.0, 1.0)
		confidenceEntropy := 1.0 - n.Confidence

		sum += 0.4*defEntropy + 0.4*conflictEntropy + 0.2*confidenceEntropy
	}
	return evidence.Clamp(sum / float64(len(nodes)))
}

// #endregion node-entropy

// #region retrieval-entropy

// temporalSpreadIndicator is the fixed spread value applied when retrieved
// fragments carry two or more timestamps. A windowed spread metric was never
// part of the observed behavior; keep the constant until one is designed.
const temporalSpreadIndicator = 0.3

// RetrievalEntropy derives contradiction uncertainty from the retrieved set.
// No retrieval at all is a neutral-cautious 0.5: missing context is evidence
// of uncertainty, not of stability.
func RetrievalEntropy(frags []evidence.RetrievedFragment) float64 {
	if len(frags) == 0 {
		return 0.5
	}
	if len(frags) == 1 {
		return evidence.Clamp(1.0 - frags[0].Confidence)
	}

	n := float64(len(frags))

	sources := make(map[string]bool, len(frags))
	confs := make([]float64, len(frags))
	contradictions := 0
	timestamps := 0
	for i, f := range frags {
		sources[f.Source] = true
		confs[i] = f.Confidence
		if f.Contradiction {
			contradictions++
		}
		if !f.Timestamp.IsZero() {
			timestamps++
		}
	}

	sourceDiversity := float64(len(sources)) / n
	mean, variance := meanVariance(confs)
	contradictionRatio := float64(contradictions) / n

	var temporalSpread float64
	if timestamps >= 2 {
		temporalSpread = temporalSpreadIndicator
	}

	score := 0.2*sourceDiversity +
		0.2*min(variance/maxConfidenceVariance, 1.0) +
		0.4*contradictionRatio +
		0.2*temporalSpread

	// Low overall confidence is an additional penalty on top of the
	// contradiction signals.
	lowConfidencePenalty := max(0, 0.5-mean) * 0.5

	return evidence.Clamp(score + lowConfidencePenalty)
}

// #endregion retrieval-entropy

// #region helpers

// meanVariance computes the population mean and variance of vals.
func meanVariance(vals []float64) (float64, float64) {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	var variance float64
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	return mean, variance / float64(len(vals))
}

// #endregion helpers
