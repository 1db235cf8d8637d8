package protocol

import "regexp"

// The validator is a pattern heuristic, not a parser. Patterns live here as
// named, versioned tables so they can be tuned and tested independently of
// classification logic.

// PatternTableVersion identifies the heuristic tables in decision logs.
const PatternTableVersion = "v1"

// #region numbers

// numberPattern matches bare numeric tokens, including percentages.
var numberPattern = regexp.MustCompile(`\b\d+\.?\d*%?`)

// #endregion numbers

// #region hedging

// hedgingTerms are substrings whose presence anywhere in the text counts as
// hedging for the unhedged-number heuristic.
var hedgingTerms = []string{
	"approximately", "about", "around", "roughly", "estimated",
	"suggests", "indicates", "appears", "may be", "could be",
	"likely", "probably", "possibly", "uncertain",
}

// #endregion hedging

// #region citations

// citationPatterns match common citation markers: bracketed numeric
// references, bracketed author-year, attribution phrases.
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[\d+\]`),        // [1], [2]
	regexp.MustCompile(`\[.*?\d{4}\]`),   // [author 2024]
	regexp.MustCompile(`according to`),   // matched against lowered text
	regexp.MustCompile(`as stated in`),
	regexp.MustCompile(`source:`),
	regexp.MustCompile(`\(.*?et al\.`),   // (smith et al.)
	regexp.MustCompile(`et al\.`),
}

// #endregion citations

// #region temporal

// temporalPhrases are the accepted "as of" framings for archival answers.
var temporalPhrases = []string{
	"as of",
	"at the time",
	"historically",
	"the record shows",
	"according to records from",
}

// #endregion temporal
