package conditioning

import "time"

// SlewBounds selects the per-tick rate limit for an axis.
//
// Initial applies during warm-up so the output can reach the stick's
// actual position quickly after conditioning starts. Steady applies
// afterwards and is typically orders of magnitude smaller.
type SlewBounds struct {
	Initial float64
	Steady  float64
	Warmup  time.Duration
}

// At returns the bound in effect at the given time since conditioning
// started.
func (b SlewBounds) At(elapsed time.Duration) float64 {
	if elapsed < b.Warmup {
		return b.Initial
	}
	return b.Steady
}

// SlewLimit moves previous toward desired by at most maxDelta.
func SlewLimit(previous, desired, maxDelta float64) float64 {
	diff := desired - previous
	if diff > maxDelta {
		diff = maxDelta
	} else if diff < -maxDelta {
		diff = -maxDelta
	}
	return previous + diff
}
