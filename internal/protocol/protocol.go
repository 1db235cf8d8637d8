package protocol

import (
	"fmt"

	"github.com/danielpatrickdp/validity-filter/internal/regime"
)

// #region protocol-definitions

// Standard applies in the stable regime: no added constraints.
var Standard = Protocol{
	Name:              "standard",
	Regime:            regime.Stable,
	PointEstimates:    true,
	ConfidenceCeiling: 1.0,
	AllowPredictions:  true,
	Indicator:         "high confidence domain",
	Description:       "Standard inference mode. Domain is stable and well-defined.",
}

// UncertaintyAware applies in the contested regime.
var UncertaintyAware = Protocol{
	Name:                      "uncertainty_aware",
	Regime:                    regime.Contested,
	RequireCitations:          true,
	RequireConflictDisclosure: true,
	ConfidenceCeiling:         0.7,
	AllowPredictions:          true,
	PromptAddition: `EPISTEMIC CONSTRAINT: this query falls in a contested domain.

Rules for this response:
- Do NOT make unqualified assertions
- Present competing interpretations where they exist
- Include uncertainty estimates for any quantitative claims
- Maximum confidence level for any claim: 70%
- Cite sources that disagree with each other explicitly
- Use hedging language: "evidence suggests", "one interpretation is", "it appears that"`,
	Indicator:   "contested domain, multiple interpretations exist",
	Description: "Uncertainty-aware mode. Domain has contested relationships or evolving knowledge.",
}

// Degraded is the stricter contested variant applied when entropy is close
// to the archival boundary.
var Degraded = Protocol{
	Name:                      "degraded",
	Regime:                    regime.Contested,
	RequireCitations:          true,
	RequireConflictDisclosure: true,
	ConfidenceCeiling:         0.3,
	PromptAddition: `EPISTEMIC CONSTRAINT: this query approaches the archival boundary.

Rules for this response:
- Do NOT provide point estimates or confident answers
- Explain WHY the knowledge domain is unstable
- Offer to retrieve historical information instead
- Suggest narrowing the query to a more stable subdomain
- Be explicit: "I cannot provide a reliable answer because..."`,
	Indicator:   "unstable domain, treat with caution",
	Description: "Degraded mode. Approaching the archival boundary; point estimates forbidden.",
}

// ArchivalOnly applies in the archival regime: retrieval without projection.
var ArchivalOnly = Protocol{
	Name:                   "archival",
	Regime:                 regime.Archival,
	RequireCitations:       true,
	RequireTemporalFraming: true,
	PromptAddition: `EPISTEMIC CONSTRAINT: this query is in archival mode.

Rules for this response:
- Provide ONLY historical information
- Frame ALL responses as: "As of [date], the knowledge base indicated..."
- Do NOT make predictions or current-state claims
- Do NOT extrapolate from historical data to the present
- If asked for current information, decline and explain why`,
	Indicator:   "archival information only",
	Description: "Archival mode. Historical retrieval only; no predictive claims.",
}

// Fallback is the conservative default when classification is unavailable.
// It is never a substitute for the Inactive error below.
var Fallback = Protocol{
	Name:                      "fallback",
	Regime:                    regime.Contested,
	RequireCitations:          true,
	RequireConflictDisclosure: true,
	ConfidenceCeiling:         0.5,
	AllowPredictions:          true,
	PromptAddition: `EPISTEMIC CONSTRAINT: regime classification unavailable; defaulting to cautious mode.

- Treat all claims as potentially contested
- Include uncertainty indicators
- Avoid confident assertions`,
	Indicator:   "regime unknown, defaulting to cautious mode",
	Description: "Conservative fallback when classification is unavailable.",
}

var byRegime = map[regime.Regime]Protocol{
	regime.Stable:    Standard,
	regime.Contested: UncertaintyAware,
	regime.Archival:  ArchivalOnly,
}

var byName = map[string]Protocol{
	Standard.Name:         Standard,
	UncertaintyAware.Name: UncertaintyAware,
	Degraded.Name:         Degraded,
	ArchivalOnly.Name:     ArchivalOnly,
	Fallback.Name:         Fallback,
}

// #endregion protocol-definitions

// #region select

// nearArchivalMargin is how close contested entropy may get to the upper
// threshold before the stricter degraded protocol takes over.
const nearArchivalMargin = 0.1

// Select returns the protocol for a regime. Asking for the Inactive
// protocol is a caller bug and fails hard; a default here would mask it.
func Select(r regime.Regime) (Protocol, error) {
	if r == regime.Inactive {
		return Protocol{}, fmt.Errorf("no protocol exists for the inactive regime")
	}
	p, ok := byRegime[r]
	if !ok {
		return Protocol{}, fmt.Errorf("unknown regime %q", r)
	}
	return p, nil
}

// SelectWithEntropy is Select with the near-archival refinement: a
// contested regime whose entropy exceeds upper−0.1 gets the degraded
// protocol instead of the standard contested one.
func SelectWithEntropy(r regime.Regime, entropy, upper float64) (Protocol, error) {
	p, err := Select(r)
	if err != nil {
		return Protocol{}, err
	}
	if r == regime.Contested && entropy > upper-nearArchivalMargin {
		return Degraded, nil
	}
	return p, nil
}

// ByName returns a protocol by its machine name, or Fallback when the name
// is unknown.
func ByName(name string) Protocol {
	if p, ok := byName[name]; ok {
		return p
	}
	return Fallback
}

// #endregion select
