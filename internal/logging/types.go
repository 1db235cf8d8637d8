package logging

import "time"

// #region decision-entry

// DecisionEntry is a single row in the decision_log table: the full
// classification outcome for one evaluation, persisted for observability.
// History lives here, not in the pipeline; classification itself is
// stateless.
type DecisionEntry struct {
	DecisionID     string
	QueryKey       string
	Regime         string
	Confidence     float64
	EntropyTotal   float64
	ComponentsJSON string // per-sub-measure breakdown
	WarningsJSON   string // entropy alert warnings, empty when none
	Protocol       string
	InTransition   bool // transition-zone advisory flag
	GraphFallback  bool // subgraph fetch degraded to an empty fragment
	CreatedAt      time.Time
}

// #endregion decision-entry
