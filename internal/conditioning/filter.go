package conditioning

// Lowpass advances a first-order exponential moving average by one sample.
//
// alpha sets how much of the new sample is blended in: 1 tracks the
// input immediately, values near 0 smooth aggressively. Seeding the
// first sample is the caller's job; see AxisPipeline.
func Lowpass(previous, current, alpha float64) float64 {
	return previous + alpha*(current-previous)
}
