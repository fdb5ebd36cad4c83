package recommend

// ReconcileScore merges a human-curated stored score with a freshly computed
// similarity so callers always see one coherent score per assigned pair.
//
// A stored non-nil, non-zero score wins: curated assignments are authoritative
// and are never overwritten by machine output. A nil or zero stored score is
// the "no judgment yet" sentinel; the computed similarity fills the gap. Both
// inputs are clamped to [0,1] on the way out. With neither available the
// score is 0.
func ReconcileScore(stored *float64, computed *float64) float64 {
	if stored != nil && *stored != 0 {
		return Clamp01(*stored)
	}

	if computed != nil {
		return Clamp01(*computed)
	}

	return 0
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
