package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/validity-filter/internal/config"
	"github.com/danielpatrickdp/validity-filter/internal/entropy"
	"github.com/danielpatrickdp/validity-filter/internal/evidence"
	"github.com/danielpatrickdp/validity-filter/internal/logging"
	"github.com/danielpatrickdp/validity-filter/internal/protocol"
	"github.com/danielpatrickdp/validity-filter/internal/regime"
)

// ErrSystemInactive is returned when the system liveness flag is down.
// There is no protocol for that state; the caller must not generate at all.
var ErrSystemInactive = errors.New("system inactive: no response protocol applies")

// #region pipeline

// snapshot bundles the config with the components derived from it so a
// reload swaps all three atomically.
type snapshot struct {
	cfg        config.Config
	classifier *regime.Classifier
	aggregator *entropy.Aggregator
}

// Pipeline runs the full evaluation: fetch evidence, score entropy,
// classify the regime, select the protocol, log the decision. Stateless
// between calls apart from the persisted decision log; safe for
// concurrent use.
type Pipeline struct {
	graphs    GraphSource
	drift     entropy.DriftSource
	decisions *logging.DecisionLog
	snap      atomic.Pointer[snapshot]
}

// New builds a pipeline. drift and decisions may be nil: structural
// entropy is then shape-estimated and decisions are only written to the
// process log.
func New(cfg config.Config, graphs GraphSource, drift entropy.DriftSource, decisions *logging.DecisionLog) (*Pipeline, error) {
	if graphs == nil {
		return nil, fmt.Errorf("pipeline requires a graph source")
	}
	p := &Pipeline{graphs: graphs, drift: drift, decisions: decisions}
	if err := p.Reload(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload validates cfg and swaps it in atomically. In-flight evaluations
// finish against the snapshot they started with; a rejected reload leaves
// the current configuration untouched.
func (p *Pipeline) Reload(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reload rejected: %w", err)
	}
	classifier, err := regime.NewClassifier(cfg.Thresholds, cfg.TransitionWidth)
	if err != nil {
		return fmt.Errorf("reload rejected: %w", err)
	}
	aggregator, err := entropy.NewAggregator(cfg.Weights, p.drift, cfg.DriftWindow.Std())
	if err != nil {
		return fmt.Errorf("reload rejected: %w", err)
	}
	p.snap.Store(&snapshot{cfg: cfg, classifier: classifier, aggregator: aggregator})
	return nil
}

// Config returns the currently active configuration.
func (p *Pipeline) Config() config.Config {
	return p.snap.Load().cfg
}

// #endregion pipeline

// #region evaluate

// Evaluate runs one query through the pipeline. The optional activity
// argument carries the liveness flags; omitted means fully active. The
// subgraph fetch is bounded by the configured timeout and degrades to an
// empty fragment on failure, which pushes the score toward caution rather
// than aborting the evaluation.
func (p *Pipeline) Evaluate(ctx context.Context, queryKey string, retrieved []evidence.RetrievedFragment, activity ...Activity) (Decision, error) {
	act := Activity{System: true, Domain: true}
	if len(activity) > 0 {
		act = activity[0]
	}
	if !act.System {
		return Decision{}, ErrSystemInactive
	}

	snap := p.snap.Load()
	frag, fallback := p.fetchFragment(ctx, snap.cfg.FetchTimeout.Std(), queryKey)
	return p.evaluate(snap, queryKey, frag, fallback, retrieved, act)
}

// EvaluateFragment is Evaluate with a caller-supplied fragment; the graph
// source is not consulted.
func (p *Pipeline) EvaluateFragment(queryKey string, frag evidence.GraphFragment, retrieved []evidence.RetrievedFragment, activity ...Activity) (Decision, error) {
	act := Activity{System: true, Domain: true}
	if len(activity) > 0 {
		act = activity[0]
	}
	if !act.System {
		return Decision{}, ErrSystemInactive
	}
	return p.evaluate(p.snap.Load(), queryKey, frag, false, retrieved, act)
}

func (p *Pipeline) evaluate(snap *snapshot, queryKey string, frag evidence.GraphFragment, fallback bool, retrieved []evidence.RetrievedFragment, act Activity) (Decision, error) {
	result := snap.aggregator.Compute(frag, retrieved)

	r, confidence, inTransition := snap.classifier.ClassifyWithState(act.System, act.Domain, result.Total)
	if r == regime.Contested && confidence > snap.cfg.ContestedConfidenceCap {
		confidence = snap.cfg.ContestedConfidenceCap
	}

	proto, err := protocol.SelectWithEntropy(r, result.Total, snap.classifier.Thresholds().Upper)
	if err != nil {
		return Decision{}, fmt.Errorf("select protocol: %w", err)
	}

	decision := Decision{
		ID:            uuid.New().String(),
		QueryKey:      queryKey,
		Regime:        r,
		Confidence:    confidence,
		Entropy:       result,
		Protocol:      proto,
		InTransition:  inTransition,
		GraphFallback: fallback,
		CreatedAt:     time.Now().UTC(),
	}

	// Every decision leaves a trace, whichever way it went.
	log.Printf("[PIPELINE] decision %s query=%q regime=%s confidence=%.3f entropy=%.3f protocol=%s transition=%v fallback=%v",
		decision.ID, queryKey, r, confidence, result.Total, proto.Name, inTransition, fallback)

	p.record(decision)
	return decision, nil
}

func (p *Pipeline) fetchFragment(ctx context.Context, timeout time.Duration, queryKey string) (evidence.GraphFragment, bool) {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	frag, err := p.graphs.FetchSubgraph(fctx, queryKey)
	if err != nil {
		log.Printf("[PIPELINE] subgraph fetch failed for %q, scoring against an empty fragment: %v", queryKey, err)
		return evidence.GraphFragment{}, true
	}
	return frag, false
}

// record writes the decision to the persistent log. Failures are logged
// and swallowed: losing a log row must not fail the evaluation.
func (p *Pipeline) record(d Decision) {
	if p.decisions == nil {
		return
	}
	componentsJSON, _ := json.Marshal(d.Entropy.Components)
	var warningsJSON []byte
	if len(d.Entropy.Warnings) > 0 {
		warningsJSON, _ = json.Marshal(d.Entropy.Warnings)
	}
	err := p.decisions.Record(logging.DecisionEntry{
		DecisionID:     d.ID,
		QueryKey:       d.QueryKey,
		Regime:         string(d.Regime),
		Confidence:     d.Confidence,
		EntropyTotal:   d.Entropy.Total,
		ComponentsJSON: string(componentsJSON),
		WarningsJSON:   string(warningsJSON),
		Protocol:       d.Protocol.Name,
		InTransition:   d.InTransition,
		GraphFallback:  d.GraphFallback,
		CreatedAt:      d.CreatedAt,
	})
	if err != nil {
		log.Printf("[PIPELINE] decision log write failed for %s: %v", d.ID, err)
	}
}

// #endregion evaluate

// #region validate-draft

// ValidateDraft checks a drafted response against the protocol the
// decision selected.
func (p *Pipeline) ValidateDraft(text string, d Decision) protocol.ValidationResult {
	return protocol.Validate(text, d.Protocol)
}

// #endregion validate-draft
