package domain

// ActivationThreshold is the raw host progress at which content is staged and
// waits for explicit activation.
const ActivationThreshold = 0.9

// NormalizeProgress maps raw host progress onto [0,1], reaching 1 at the activation threshold.
func NormalizeProgress(raw float64) float64 {
	p := raw / ActivationThreshold
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// IsStaged reports whether raw host progress has reached the activation threshold.
func IsStaged(raw float64) bool {
	return raw >= ActivationThreshold
}
