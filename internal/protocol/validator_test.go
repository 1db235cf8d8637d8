package protocol

import "testing"

func TestValidateMissingCitationFails(t *testing.T) {
	res := Validate("The effect is exactly 45%.", UncertaintyAware)

	if res.Valid {
		t.Fatal("uncited answer under a citations-required protocol must fail")
	}
	if len(res.Violations) == 0 {
		t.Fatal("expected a citation violation")
	}
	// The bare percentage with no hedging should also draw a warning.
	if len(res.Warnings) == 0 {
		t.Fatal("expected an unhedged-number warning")
	}
	if res.Protocol != "uncertainty_aware" {
		t.Fatalf("result should name the protocol checked, got %q", res.Protocol)
	}
}

func TestValidateHedgedCitedAnswerPasses(t *testing.T) {
	res := Validate("Studies suggest approximately 30-50% [1].", UncertaintyAware)

	if !res.Valid {
		t.Fatalf("expected valid, got violations %v", res.Violations)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected no violations, got %v", res.Violations)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("hedged numbers should not warn, got %v", res.Warnings)
	}
}

func TestValidateCitationPatterns(t *testing.T) {
	cases := []string{
		"According to the survey, results varied.",
		"The rate held steady (Smith et al. 2021).",
		"Source: the 2020 archival release.",
		"Competing values were reported [Riess 2022].",
	}
	for _, text := range cases {
		res := Validate(text, UncertaintyAware)
		if !res.Valid {
			t.Fatalf("%q should satisfy the citation requirement: %v", text, res.Violations)
		}
	}
}

func TestValidateTemporalFraming(t *testing.T) {
	res := Validate("The measured value was 67.4 [1].", ArchivalOnly)
	if res.Valid {
		t.Fatal("archival answers without temporal framing must fail")
	}

	res = Validate("As of 2023, the knowledge base indicated a value near 67 [1].", ArchivalOnly)
	if !res.Valid {
		t.Fatalf("temporally framed, cited answer should pass: %v", res.Violations)
	}
}

func TestValidateWarningsDoNotFail(t *testing.T) {
	// Citations present but a bare number with no hedging: warning only.
	res := Validate("The constant is 42 according to the archive.", UncertaintyAware)
	if !res.Valid {
		t.Fatalf("warnings must not fail the result: %v", res.Violations)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected an unhedged-number warning")
	}
}

func TestValidateNoNumbersNoWarning(t *testing.T) {
	res := Validate("Interpretations differ according to several groups.", UncertaintyAware)
	if len(res.Warnings) != 0 {
		t.Fatalf("no numeric tokens should mean no warning, got %v", res.Warnings)
	}
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Violations)
	}
}

func TestValidateUnconstrainedProtocolAcceptsAnything(t *testing.T) {
	res := Validate("The value is exactly 45%.", Standard)
	if !res.Valid || len(res.Warnings) != 0 || len(res.Violations) != 0 {
		t.Fatalf("standard protocol should accept point estimates: %+v", res)
	}
}
