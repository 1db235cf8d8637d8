package protocol

import "github.com/danielpatrickdp/validity-filter/internal/regime"

// #region protocol

// Protocol is the fixed bundle of generation constraints for a regime.
// Protocols are statically enumerated and immutable.
type Protocol struct {
	Name   string
	Regime regime.Regime

	// Generation constraints
	PointEstimates            bool    // bare numeric claims allowed
	RequireCitations          bool    // at least one citation marker required
	RequireConflictDisclosure bool    // disagreeing sources must be surfaced
	ConfidenceCeiling         float64 // maximum confidence any claim may carry
	AllowPredictions          bool    // forward-looking claims allowed
	RequireTemporalFraming    bool    // "as of ..." framing required

	// Generation-time constraint text appended to the system prompt.
	PromptAddition string

	// User-facing status line.
	Indicator string

	Description string
}

// FullSystemPrompt appends the protocol's constraint text to a base prompt.
func (p Protocol) FullSystemPrompt(base string) string {
	if p.PromptAddition == "" {
		return base
	}
	if base == "" {
		return p.PromptAddition
	}
	return base + "\n\n" + p.PromptAddition
}

// #endregion protocol

// #region validation-result

// ValidationResult is the outcome of checking a candidate answer against a
// protocol. Violations fail the result; warnings are advisory heuristic
// signals and do not.
type ValidationResult struct {
	Valid      bool
	Violations []string
	Warnings   []string
	Protocol   string
}

// #endregion validation-result
