package entropy

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/danielpatrickdp/validity-filter/internal/evidence"
)

func mustAggregator(t *testing.T, w Weights) *Aggregator {
	t.Helper()
	a, err := NewAggregator(w, nil, 0)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	return a
}

func TestWeightsValidation(t *testing.T) {
	if err := ValidateWeights(DefaultWeights()); err != nil {
		t.Fatalf("default weights should validate: %v", err)
	}
	if err := ValidateWeights(Weights{Edge: -0.1, Node: 0.5, Structural: 0.3, Retrieval: 0.3}); err == nil {
		t.Fatal("negative weight should fail validation")
	}
	if err := ValidateWeights(Weights{Edge: 0.3, Node: 0.3, Structural: 0.3, Retrieval: 0.3}); err == nil {
		t.Fatal("weights summing to 1.2 should fail validation")
	}
}

func TestEdgeEntropyEmptyAndSingle(t *testing.T) {
	if got := EdgeEntropy(evidence.GraphFragment{}); got != 0.0 {
		t.Fatalf("no edges should be vacuously stable, got %v", got)
	}

	f := evidence.GraphFragment{Edges: []evidence.Edge{{Type: "supports", Confidence: 0.9}}}
	got := EdgeEntropy(f)
	if math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("single edge entropy = 1-confidence, expected 0.1, got %v", got)
	}
}

func TestEdgeEntropyMaxVariance(t *testing.T) {
	// Half at 0, half at 1: variance 0.25 (the maximum), mean 0.5.
	// 0.6*1.0 + 0.4*0.5 = 0.8
	f := evidence.GraphFragment{Edges: []evidence.Edge{
		{Type: "supports", Confidence: 0.0},
		{Type: "supports", Confidence: 1.0},
	}}
	got := EdgeEntropy(f)
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("expected 0.8, got %v", got)
	}
}

func TestNodeEntropyEmptyAndWeights(t *testing.T) {
	if got := NodeEntropy(evidence.GraphFragment{}); got != 0.0 {
		t.Fatalf("no nodes should score 0, got %v", got)
	}

	// 5 definitions (capped term = 1.0), 3 conflicts (capped term = 1.0),
	// confidence 0.5: 0.4*1 + 0.4*1 + 0.2*0.5 = 0.9
	f := evidence.GraphFragment{Nodes: []evidence.Node{{
		ID:          "dark-energy",
		Confidence:  0.5,
		Definitions: []string{"d1", "d2", "d3", "d4", "d5"},
		Conflicts:   []string{"c1", "c2", "c3"},
	}}}
	got := NodeEntropy(f)
	if math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("expected 0.9, got %v", got)
	}
}

func TestNodeEntropySingleDefinitionNotPenalized(t *testing.T) {
	f := evidence.GraphFragment{Nodes: []evidence.Node{{
		ID: "hubble-constant", Confidence: 1.0, Definitions: []string{"only one"},
	}}}
	if got := NodeEntropy(f); got != 0.0 {
		t.Fatalf("one definition, no conflicts, full confidence should be 0, got %v", got)
	}
}

func TestRetrievalEntropyDefaults(t *testing.T) {
	if got := RetrievalEntropy(nil); got != 0.5 {
		t.Fatalf("no retrieval should be neutral-cautious 0.5, got %v", got)
	}
	got := RetrievalEntropy([]evidence.RetrievedFragment{{Source: "a", Confidence: 0.95}})
	if math.Abs(got-0.05) > 1e-9 {
		t.Fatalf("single fragment should score 1-confidence, got %v", got)
	}
}

func TestRetrievalEntropyContradictionRatio(t *testing.T) {
	// Four fragments, two contradiction-flagged: ratio 0.5 contributes
	// 0.4*0.5 = 0.2 before other terms.
	frags := []evidence.RetrievedFragment{
		{Source: "a", Confidence: 0.9, Contradiction: true},
		{Source: "a", Confidence: 0.9, Contradiction: true},
		{Source: "a", Confidence: 0.9},
		{Source: "a", Confidence: 0.9},
	}
	got := RetrievalEntropy(frags)
	// source diversity 0.25 → 0.05, variance 0, contradiction 0.2, spread 0,
	// no low-confidence penalty: total 0.25
	if math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestRetrievalEntropyLowConfidencePenalty(t *testing.T) {
	frags := []evidence.RetrievedFragment{
		{Source: "a", Confidence: 0.1},
		{Source: "b", Confidence: 0.1},
	}
	// diversity 1.0 → 0.2, variance 0, contradiction 0, spread 0,
	// penalty (0.5-0.1)*0.5 = 0.2: total 0.4
	got := RetrievalEntropy(frags)
	if math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("expected 0.4, got %v", got)
	}
}

func TestRetrievalEntropyTemporalSpread(t *testing.T) {
	now := time.Now()
	frags := []evidence.RetrievedFragment{
		{Source: "a", Confidence: 0.9, Timestamp: now.AddDate(-2, 0, 0)},
		{Source: "a", Confidence: 0.9, Timestamp: now},
	}
	// diversity 0.5 → 0.1, spread 0.3 → 0.06: total 0.16
	got := RetrievalEntropy(frags)
	if math.Abs(got-0.16) > 1e-9 {
		t.Fatalf("expected 0.16, got %v", got)
	}
}

func TestComputeScenarioEmptyEvidence(t *testing.T) {
	// Empty fragment + empty retrieval: only the neutral retrieval default
	// contributes. 0.20 * 0.5 = 0.10.
	a := mustAggregator(t, DefaultWeights())
	res := a.Compute(evidence.GraphFragment{}, nil)

	if res.Components[ComponentEdge] != 0.0 || res.Components[ComponentNode] != 0.0 {
		t.Fatalf("empty fragment should have zero edge/node entropy: %+v", res.Components)
	}
	if res.Components[ComponentStructural] != 0.0 {
		t.Fatalf("fully empty fragment structural estimate should be 0, got %v",
			res.Components[ComponentStructural])
	}
	if res.Components[ComponentRetrieval] != 0.5 {
		t.Fatalf("no retrieval should be 0.5, got %v", res.Components[ComponentRetrieval])
	}
	if math.Abs(res.Total-0.10) > 1e-9 {
		t.Fatalf("expected total 0.10, got %v", res.Total)
	}
}

func TestComputeScenarioStableEvidence(t *testing.T) {
	// Single confident edge, single confident node, confident retrieval:
	// composite should stay well under the stable threshold.
	a := mustAggregator(t, DefaultWeights())
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 0.9}},
		Edges: []evidence.Edge{{Type: "supports", Confidence: 0.9, CreatedAt: time.Now()}},
	}
	retrieved := []evidence.RetrievedFragment{{Source: "paper-1", Confidence: 0.95}}

	res := a.Compute(frag, retrieved)
	if res.Total >= 0.2 {
		t.Fatalf("confident evidence should score < 0.2, got %v (components %+v)",
			res.Total, res.Components)
	}
}

func TestComputeContradictionsRaiseTotal(t *testing.T) {
	// Same graph evidence as the stable scenario, but a contradicting
	// retrieved set: total must strictly increase.
	a := mustAggregator(t, DefaultWeights())
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 0.9}},
		Edges: []evidence.Edge{{Type: "supports", Confidence: 0.9, CreatedAt: time.Now()}},
	}
	stable := a.Compute(frag, []evidence.RetrievedFragment{{Source: "paper-1", Confidence: 0.95}})

	contested := a.Compute(frag, []evidence.RetrievedFragment{
		{Source: "paper-1", Confidence: 0.9, Contradiction: true},
		{Source: "paper-2", Confidence: 0.9, Contradiction: true},
		{Source: "paper-3", Confidence: 0.9},
		{Source: "paper-4", Confidence: 0.9},
	})

	if contested.Total <= stable.Total {
		t.Fatalf("contradictions should raise total: stable=%v contested=%v",
			stable.Total, contested.Total)
	}
	if contested.Components[ComponentRetrieval] < 0.2 {
		t.Fatalf("contradiction ratio 0.5 should contribute at least 0.2, got %v",
			contested.Components[ComponentRetrieval])
	}
}

func TestComputeIdempotent(t *testing.T) {
	a := mustAggregator(t, DefaultWeights())
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 0.4, Conflicts: []string{"c1"}}},
		Edges: []evidence.Edge{
			{Type: "supports", Confidence: 0.2},
			{Type: "refutes", Confidence: 0.9},
		},
	}
	retrieved := []evidence.RetrievedFragment{
		{Source: "a", Confidence: 0.3, Contradiction: true},
		{Source: "b", Confidence: 0.8},
	}

	first := a.Compute(frag, retrieved)
	second := a.Compute(frag, retrieved)

	if first.Total != second.Total {
		t.Fatalf("compute is not idempotent: %v vs %v", first.Total, second.Total)
	}
	for c, v := range first.Components {
		if second.Components[c] != v {
			t.Fatalf("component %s differs across calls", c)
		}
	}
}

func TestComputeMonotoneInRetrievalComponent(t *testing.T) {
	// Raising one sub-measure while the others are fixed must never lower
	// the composite when all weights are positive.
	a := mustAggregator(t, DefaultWeights())
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 0.9}},
		Edges: []evidence.Edge{{Type: "supports", Confidence: 0.9}},
	}

	prev := -1.0
	for _, conf := range []float64{0.9, 0.7, 0.5, 0.3, 0.1} {
		res := a.Compute(frag, []evidence.RetrievedFragment{{Source: "s", Confidence: conf}})
		if res.Total < prev {
			t.Fatalf("total decreased as retrieval entropy increased: %v < %v", res.Total, prev)
		}
		prev = res.Total
	}
}

func TestComputeWarningsDoNotChangeTotal(t *testing.T) {
	a := mustAggregator(t, DefaultWeights())
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{
			ID: "n1", Confidence: 0.1,
			Definitions: []string{"d1", "d2", "d3", "d4", "d5"},
			Conflicts:   []string{"c1", "c2", "c3"},
		}},
		Edges: []evidence.Edge{
			{Type: "supports", Confidence: 0.0},
			{Type: "refutes", Confidence: 1.0},
		},
	}
	res := a.Compute(frag, nil)

	if len(res.Warnings) == 0 {
		t.Fatal("expected component alert warnings")
	}
	expected := a.weights.Edge*res.Components[ComponentEdge] +
		a.weights.Node*res.Components[ComponentNode] +
		a.weights.Structural*res.Components[ComponentStructural] +
		a.weights.Retrieval*res.Components[ComponentRetrieval]
	if math.Abs(res.Total-expected) > 1e-9 {
		t.Fatalf("total %v is not the weighted component sum %v", res.Total, expected)
	}
}

type fixedDrift struct {
	value float64
	err   error
}

func (d fixedDrift) StructuralDrift(time.Duration) (float64, error) {
	return d.value, d.err
}

func TestStructuralDriftSourcePreferred(t *testing.T) {
	a, err := NewAggregator(DefaultWeights(), fixedDrift{value: 0.3}, 0)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 1.0}},
		Edges: []evidence.Edge{{Type: "supports", Confidence: 1.0, CreatedAt: time.Now()}},
	}
	res := a.Compute(frag, nil)
	if res.Components[ComponentStructural] != 0.3 {
		t.Fatalf("drift source value should be used, got %v", res.Components[ComponentStructural])
	}
}

func TestStructuralDriftErrorFallsBack(t *testing.T) {
	a, err := NewAggregator(DefaultWeights(), fixedDrift{err: errors.New("no snapshots")}, 0)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	frag := evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 1.0}, {ID: "n2", Confidence: 1.0}},
		Edges: []evidence.Edge{{Type: "supports", Confidence: 1.0, CreatedAt: time.Now()}},
	}
	res := a.Compute(frag, nil)
	want := StructuralEntropy(evidence.SanitizeFragment(frag))
	if res.Components[ComponentStructural] != want {
		t.Fatalf("expected shape estimate %v on drift error, got %v",
			want, res.Components[ComponentStructural])
	}
}

type fixedSnapshots struct {
	n   int
	err error
}

func (f fixedSnapshots) SnapshotCount(time.Duration) (int, error) {
	return f.n, f.err
}

func TestSnapshotDrift(t *testing.T) {
	if _, err := (SnapshotDrift{Source: fixedSnapshots{n: 1}}).StructuralDrift(time.Hour); err == nil {
		t.Fatal("a single snapshot is not a drift history and should error")
	}
	if _, err := (SnapshotDrift{Source: fixedSnapshots{err: errors.New("db closed")}}).StructuralDrift(time.Hour); err == nil {
		t.Fatal("source errors should propagate")
	}

	d, err := (SnapshotDrift{Source: fixedSnapshots{n: 3}}).StructuralDrift(time.Hour)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if d != 0.3 {
		t.Fatalf("expected the fixed drift indicator 0.3, got %v", d)
	}
}

func TestStructuralEntropyShapeEstimate(t *testing.T) {
	// Nodes but no edges: structure unknown → 0.5.
	f := evidence.GraphFragment{Nodes: []evidence.Node{{ID: "n1", Confidence: 1.0}}}
	if got := StructuralEntropy(f); got != 0.5 {
		t.Fatalf("nodes without edges should score 0.5, got %v", got)
	}

	// Two nodes, one timestamped edge, single type: type diversity 1.0,
	// density 1.0 → |1-0.3|/0.7 = 1.0, temporal coverage full.
	// 0.4*1 + 0.3*1 + 0.3*0 = 0.7
	f = evidence.GraphFragment{
		Nodes: []evidence.Node{{ID: "n1", Confidence: 1.0}, {ID: "n2", Confidence: 1.0}},
		Edges: []evidence.Edge{{Type: "supports", Confidence: 1.0, CreatedAt: time.Now()}},
	}
	got := StructuralEntropy(f)
	if math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("expected 0.7, got %v", got)
	}
}
