package state

import "time"

// Fixed capacities of the published record. These match the supported
// controller profile: indices at or beyond the capacity are dropped at
// ingestion, so every consumer can rely on array bounds at compile time.
const (
	// MaxAxes is the number of tracked axis channels.
	MaxAxes = 8

	// MaxButtons is the number of tracked button channels.
	MaxButtons = 13

	// NumAccumulators is the number of paired-button accumulator channels.
	NumAccumulators = 2
)

// Snapshot is one complete conditioned frame of controller state.
//
// Values are application-ready: axes are conditioned to [-1, 1], buttons
// are 0 or 1, accumulators are clamped to [-1, 1]. Before the
// initialization gate enables, only the designated start button is
// mirrored and every other field holds its zero default.
//
// A Snapshot is immutable once published. Consumers receive copies and
// may retain them freely.
type Snapshot struct {
	// Seq increases by exactly one per published tick, starting at 1.
	// The zero Snapshot returned before the first publish has Seq 0.
	Seq uint64 `json:"seq"`

	// Time is when the tick that produced this snapshot ran.
	Time time.Time `json:"time"`

	// Enabled reports whether the initialization gate has opened.
	Enabled bool `json:"enabled"`

	// Axes holds the conditioned axis values in [-1, 1].
	Axes [MaxAxes]float64 `json:"axes"`

	// Buttons holds the mirrored button states, 0 or 1.
	Buttons [MaxButtons]uint8 `json:"buttons"`

	// Accumulators holds the paired-button accumulator values in [-1, 1].
	Accumulators [NumAccumulators]float64 `json:"accumulators"`
}
