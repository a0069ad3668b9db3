package calculator

var presets = []float64{5, 10, 15, 25, 50}

// Presets returns the fixed tip percentages offered as buttons.
func Presets() []float64 {
	out := make([]float64, len(presets))
	copy(out, presets)
	return out
}

// IsPreset reports whether pct is one of the preset percentages.
func IsPreset(pct float64) bool {
	for _, p := range presets {
		if p == pct {
			return true
		}
	}
	return false
}
