package conditioning

import "time"

// Params carries the tuning for one axis pipeline.
type Params struct {
	// Alpha is the low-pass blend factor in (0, 1].
	Alpha float64

	// DeadZone is the shaper threshold in [0, 1).
	DeadZone float64

	// Slew bounds the per-tick change of the output.
	Slew SlewBounds

	// Norm maps raw counts onto [-1, 1].
	Norm Normalizer
}

// AxisPipeline conditions one axis: low-pass filter, normalize, shape,
// then slew-limit against the previously published value.
//
// The first Advance seeds the filter from the raw sample and skips the
// slew stage, so the output starts at the stick's actual position rather
// than crawling there from zero. Every subsequent tick runs the full
// chain.
type AxisPipeline struct {
	params   Params
	filtered float64
	seeded   bool
}

// NewAxisPipeline returns a pipeline in the unseeded state.
func NewAxisPipeline(params Params) AxisPipeline {
	return AxisPipeline{params: params}
}

// Advance processes one tick and returns the value to publish.
//
// raw is the latest raw sample for this axis, published is the value
// most recently published for it, and elapsed is the time since
// conditioning began, which selects the slew bound.
func (p *AxisPipeline) Advance(raw, published float64, elapsed time.Duration) float64 {
	if !p.seeded {
		p.filtered = raw
		p.seeded = true
		return Shape(p.params.Norm.Apply(raw), p.params.DeadZone)
	}

	p.filtered = Lowpass(p.filtered, raw, p.params.Alpha)
	shaped := Shape(p.params.Norm.Apply(p.filtered), p.params.DeadZone)
	return SlewLimit(published, shaped, p.params.Slew.At(elapsed))
}
