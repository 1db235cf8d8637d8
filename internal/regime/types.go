package regime

import "fmt"

// #region regime

// Regime is the discrete operating mode derived from entropy and activity
// flags. The set is closed; per-regime behavior is a pure function of the
// tag (see traits below).
type Regime string

const (
	Inactive  Regime = "inactive"  // system not live, no entropy computed
	Stable    Regime = "stable"    // low entropy, confident answers permitted
	Contested Regime = "contested" // elevated entropy, hedged answers required
	Archival  Regime = "archival"  // at/above upper threshold, no forward-looking claims
)

// #endregion regime

// #region traits

type traits struct {
	allowsConfidentOutput bool
	requiresUncertainty   bool
	isArchival            bool
	active                bool
}

var regimeTraits = map[Regime]traits{
	Inactive:  {},
	Stable:    {allowsConfidentOutput: true, active: true},
	Contested: {requiresUncertainty: true, active: true},
	Archival:  {isArchival: true},
}

// AllowsConfidentOutput reports whether assertive answers are permitted.
func (r Regime) AllowsConfidentOutput() bool { return regimeTraits[r].allowsConfidentOutput }

// RequiresUncertainty reports whether explicit hedging is required.
func (r Regime) RequiresUncertainty() bool { return regimeTraits[r].requiresUncertainty }

// IsArchival reports whether only historical claims are permitted.
func (r Regime) IsArchival() bool { return regimeTraits[r].isArchival }

// IsActive reports whether the regime supports live inference.
func (r Regime) IsActive() bool { return regimeTraits[r].active }

// #endregion traits

// #region thresholds

// Thresholds holds the two entropy boundaries: Stable below Lower,
// Contested in [Lower, Upper), Archival at or above Upper.
type Thresholds struct {
	Lower float64 `yaml:"lower"` // upper bound of Stable
	Upper float64 `yaml:"upper"` // upper bound of Contested
}

// DefaultThresholds returns the standard 0.3/0.7 boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Lower: 0.3, Upper: 0.7}
}

// Validate enforces 0 < Lower < Upper < 1.
func (t Thresholds) Validate() error {
	if !(0 < t.Lower && t.Lower < t.Upper && t.Upper < 1) {
		return fmt.Errorf("invalid thresholds: need 0 < %v < %v < 1", t.Lower, t.Upper)
	}
	return nil
}

// #endregion thresholds
