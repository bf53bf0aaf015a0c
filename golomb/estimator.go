package golomb

import "math"

// ln2 relates the mean absolute residual of a Laplacian source to the
// rate-optimal Golomb parameter.
const ln2 = 0.693147

// EstimateM derives the Golomb parameter for a block of residuals as the
// mean absolute residual scaled by ln 2, rounded, and clamped to at least 1.
// An empty block yields 1. The result is deterministic for a given input.
func EstimateM(residuals []int) int {
	if len(residuals) == 0 {
		return 1
	}

	sumAbs := 0.0
	for _, r := range residuals {
		sumAbs += math.Abs(float64(r))
	}
	avg := sumAbs / float64(len(residuals))

	m := int(math.Round(avg * ln2))
	if m < 1 {
		return 1
	}
	return m
}
