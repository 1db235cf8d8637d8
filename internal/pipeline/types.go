package pipeline

import (
	"context"
	"time"

	"github.com/danielpatrickdp/validity-filter/internal/entropy"
	"github.com/danielpatrickdp/validity-filter/internal/evidence"
	"github.com/danielpatrickdp/validity-filter/internal/protocol"
	"github.com/danielpatrickdp/validity-filter/internal/regime"
)

// #region graph-source

// GraphSource provides the query-relevant knowledge-graph fragment.
// Implementations must honor the context deadline.
type GraphSource interface {
	FetchSubgraph(ctx context.Context, queryKey string) (evidence.GraphFragment, error)
}

// #endregion graph-source

// #region activity

// Activity carries the liveness flags that take precedence over entropy.
// Both default to true when the caller omits them.
type Activity struct {
	System bool
	Domain bool
}

// #endregion activity

// #region decision

// Decision is the full outcome of one evaluation: the classification, the
// entropy evidence behind it, and the protocol the response must follow.
type Decision struct {
	ID         string
	QueryKey   string
	Regime     regime.Regime
	Confidence float64
	Entropy    entropy.Result
	Protocol   protocol.Protocol

	// InTransition marks entropy inside the dampened band around the
	// stable/contested boundary.
	InTransition bool

	// GraphFallback marks that the subgraph fetch failed and the decision
	// was made against an empty fragment.
	GraphFallback bool

	CreatedAt time.Time
}

// #endregion decision
