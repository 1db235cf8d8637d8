package entropy

// #region component

// Component names one of the four entropy sub-measures.
type Component string

const (
	ComponentEdge       Component = "edge"       // relationship uncertainty
	ComponentNode       Component = "node"       // concept uncertainty
	ComponentStructural Component = "structural" // structural/temporal instability
	ComponentRetrieval  Component = "retrieval"  // retrieval contradiction
)

// #endregion component

// #region weights

// Weights holds the combination weights for the four sub-measures.
// Must be non-negative and sum to 1; validated at aggregator construction,
// not per call.
type Weights struct {
	Edge       float64 `yaml:"edge"`
	Node       float64 `yaml:"node"`
	Structural float64 `yaml:"structural"`
	Retrieval  float64 `yaml:"retrieval"`
}

// DefaultWeights returns the standard component weighting.
func DefaultWeights() Weights {
	return Weights{
		Edge:       0.30,
		Node:       0.25,
		Structural: 0.25,
		Retrieval:  0.20,
	}
}

// #endregion weights

// #region result

// Result is the output of one entropy computation.
type Result struct {
	Total      float64
	Components map[Component]float64
	Warnings   []string
}

// #endregion result
