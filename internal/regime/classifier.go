package regime

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/validity-filter/internal/evidence"
)

// #region classifier

// Classifier maps composite entropy values to regimes. Immutable after
// construction; safe for concurrent use.
type Classifier struct {
	thresholds      Thresholds
	transitionWidth float64
}

// DefaultTransitionWidth is the band around the lower threshold in which
// classification confidence is deliberately dampened.
const DefaultTransitionWidth = 0.1

// NewClassifier validates the thresholds and returns a classifier. An
// invalid configuration is a construction error, never a per-call one.
func NewClassifier(th Thresholds, transitionWidth float64) (*Classifier, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	if transitionWidth < 0 {
		return nil, fmt.Errorf("transition width must be non-negative, got %v", transitionWidth)
	}
	if transitionWidth == 0 {
		transitionWidth = DefaultTransitionWidth
	}
	return &Classifier{thresholds: th, transitionWidth: transitionWidth}, nil
}

// Thresholds returns the configured boundaries.
func (c *Classifier) Thresholds() Thresholds { return c.thresholds }

// #endregion classifier

// #region classify

// Classify maps a composite entropy value to a regime and a confidence.
// H is clamped to [0,1] before comparison. Inactive is never returned here;
// it is only asserted from activity flags (ClassifyWithState).
func (c *Classifier) Classify(entropy float64) (Regime, float64) {
	h := evidence.Clamp(entropy)
	th := c.thresholds

	switch {
	case h < th.Lower:
		// Confidence falls linearly from 1.0 at H=0 to 0.0 at the boundary.
		return Stable, 1.0 - h/th.Lower

	case h < th.Upper:
		// Confidence peaks at the regime midpoint and reaches 0 at either
		// boundary.
		mid := (th.Lower + th.Upper) / 2
		halfRange := (th.Upper - th.Lower) / 2
		return Contested, 1.0 - math.Abs(h-mid)/halfRange

	default:
		// Once the system declares itself unreliable it asserts no
		// confidence at all.
		return Archival, 0.0
	}
}

// #endregion classify

// #region classify-transition

// ClassifyWithTransition is Classify plus transition-zone detection: inside
// ±width/2 of the lower threshold the confidence is multiplied by 0.7 and
// the advisory flag is set. The regime label itself never changes.
func (c *Classifier) ClassifyWithTransition(entropy float64) (Regime, float64, bool) {
	r, confidence := c.Classify(entropy)

	h := evidence.Clamp(entropy)
	lower := c.thresholds.Lower - c.transitionWidth/2
	upper := c.thresholds.Lower + c.transitionWidth/2
	inTransition := h >= lower && h <= upper

	if inTransition {
		confidence *= 0.7
	}
	return r, confidence, inTransition
}

// #endregion classify-transition

// #region classify-state

// ClassifyWithState applies the strict system → domain → entropy precedence
// chain. An inactive system is Inactive regardless of everything else; an
// inactive domain forces Archival regardless of entropy. Only a fully
// active system classifies by entropy.
func (c *Classifier) ClassifyWithState(systemActive, domainActive bool, entropy float64) (Regime, float64, bool) {
	if !systemActive {
		return Inactive, 0.0, false
	}
	if !domainActive {
		return Archival, 0.0, false
	}
	return c.ClassifyWithTransition(entropy)
}

// #endregion classify-state

// #region confidence-ceiling

// ConfidenceCeiling returns the maximum confidence a generated claim may
// carry at the given entropy: 1.0 in Stable, 0.3–0.7 across Contested
// (scaled by position in the band), 0.0 in Archival.
func (c *Classifier) ConfidenceCeiling(entropy float64) float64 {
	r, confidence := c.Classify(entropy)
	switch r {
	case Stable:
		return 1.0
	case Contested:
		return 0.3 + 0.4*confidence
	default:
		return 0.0
	}
}

// #endregion confidence-ceiling
