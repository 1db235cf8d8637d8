package protocol

import "strings"

// #region validate

// Validate checks a candidate answer against a protocol's constraints using
// surface-pattern heuristics. It never errors: everything it finds lands on
// the result as a violation (definitive) or a warning (heuristic signal).
func Validate(text string, p Protocol) ValidationResult {
	result := ValidationResult{Protocol: p.Name}
	lower := strings.ToLower(text)

	// Unhedged numbers are only a warning: the heuristic has false
	// positives and cannot claim certainty about meaning.
	if !p.PointEstimates && containsUnhedgedNumbers(text, lower) {
		result.Warnings = append(result.Warnings,
			"response may contain unhedged point estimates")
	}

	if p.RequireCitations && !containsCitation(lower) {
		result.Violations = append(result.Violations,
			"response missing required citations")
	}

	if p.RequireTemporalFraming && !containsTemporalFraming(lower) {
		result.Violations = append(result.Violations,
			"response missing required temporal framing (as of ...)")
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// #endregion validate

// #region heuristics

// containsUnhedgedNumbers reports numeric tokens with no hedging language
// anywhere in the text.
func containsUnhedgedNumbers(text, lower string) bool {
	if !numberPattern.MatchString(text) {
		return false
	}
	for _, term := range hedgingTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// containsCitation reports any recognized citation marker. Patterns are
// matched against the lowered text.
func containsCitation(lower string) bool {
	for _, p := range citationPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// containsTemporalFraming reports any accepted temporal phrase.
func containsTemporalFraming(lower string) bool {
	for _, phrase := range temporalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// #endregion heuristics
