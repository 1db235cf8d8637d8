package evidence

import "time"

// #region node

// Node is a single concept record inside a graph fragment.
type Node struct {
	ID          string
	Confidence  float64  // clamped to [0,1] on ingestion
	Definitions []string // alternative/conflicting definitions, may be empty
	Conflicts   []string // conflict markers, may be empty
}

// #endregion node

// #region edge

// Edge is a single relationship record inside a graph fragment.
// Zero CreatedAt/UpdatedAt means the edge carries no temporal marker.
type Edge struct {
	Type       string
	Confidence float64 // clamped to [0,1] on ingestion
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasTemporalMarker reports whether the edge carries any timestamp.
func (e Edge) HasTemporalMarker() bool {
	return !e.CreatedAt.IsZero() || !e.UpdatedAt.IsZero()
}

// #endregion edge

// #region graph-fragment

// GraphFragment is the query-relevant subset of the knowledge graph.
// Constructed fresh per query, immutable once handed to the aggregator,
// discarded after one evaluation.
type GraphFragment struct {
	Nodes []Node
	Edges []Edge
}

// Empty reports whether the fragment carries no evidence at all.
func (f GraphFragment) Empty() bool {
	return len(f.Nodes) == 0 && len(f.Edges) == 0
}

// #endregion graph-fragment

// #region retrieved-fragment

// RetrievedFragment is one chunk returned by external retrieval.
type RetrievedFragment struct {
	Source        string
	Confidence    float64 // clamped to [0,1] on ingestion
	Contradiction bool
	Timestamp     time.Time // zero = no timestamp
}

// #endregion retrieved-fragment
