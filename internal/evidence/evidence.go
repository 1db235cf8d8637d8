package evidence

// #region sanitize-fragment

// SanitizeFragment clamps all confidences to [0,1] and drops duplicate node
// IDs, keeping the first occurrence. The returned fragment is a copy; the
// input is never mutated.
func SanitizeFragment(f GraphFragment) GraphFragment {
	out := GraphFragment{}

	seen := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.ID != "" && seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		n.Confidence = Clamp(n.Confidence)
		out.Nodes = append(out.Nodes, n)
	}

	for _, e := range f.Edges {
		e.Confidence = Clamp(e.Confidence)
		out.Edges = append(out.Edges, e)
	}

	return out
}

// #endregion sanitize-fragment

// #region sanitize-retrieved

// SanitizeRetrieved clamps retrieved-fragment confidences to [0,1].
// An empty or nil set is valid input: missing context is a signal, not an error.
func SanitizeRetrieved(frags []RetrievedFragment) []RetrievedFragment {
	if len(frags) == 0 {
		return nil
	}
	out := make([]RetrievedFragment, len(frags))
	for i, r := range frags {
		r.Confidence = Clamp(r.Confidence)
		out[i] = r
	}
	return out
}

// #endregion sanitize-retrieved

// #region clamp

// Clamp restricts v to [0, 1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion clamp
