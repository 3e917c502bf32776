package conditioning

import "math"

// Shape applies the dead zone and response curve to a normalized sample.
//
// Magnitudes below threshold collapse to zero. The remaining band is
// rescaled to span [0, 1] and squared, which keeps fine control soft
// just past the dead zone while preserving full deflection: Shape(1, t)
// is exactly 1 for any threshold in [0, 1). Output sign matches input
// sign.
func Shape(unit, threshold float64) float64 {
	magnitude := math.Abs(unit)
	if magnitude < threshold {
		return 0
	}
	scaled := (magnitude - threshold) / (1 - threshold)
	curved := scaled * scaled
	if unit < 0 {
		return -curved
	}
	return curved
}
