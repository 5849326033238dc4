package domain

const (
	// LbToKg is the exact pound to kilogram factor.
	LbToKg  = 0.45359237
	inchToM = 0.0254

	// DefaultBMIHeight is the fixed height, in meters, used for BMI unless
	// profile heights are enabled.
	DefaultBMIHeight = 1.72
)

// ConvertWeight converts a weight between metric (kg) and imperial (lb).
// Returns v unchanged if from == to or if a unit is unrecognised.
func ConvertWeight(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	if from == UnitImperial && to == UnitMetric {
		return v * LbToKg
	}
	if from == UnitMetric && to == UnitImperial {
		return v / LbToKg
	}
	return v
}

// HeightMeters converts a profile height (cm for metric, inches for
// imperial) to meters.
func HeightMeters(h float64, unit Unit) float64 {
	if unit == UnitImperial {
		return h * inchToM
	}
	return h / 100
}

// BMI is weight over height squared. Returns 0 for a non-positive height.
func BMI(weightKg, heightM float64) float64 {
	if heightM <= 0 {
		return 0
	}
	return weightKg / (heightM * heightM)
}
