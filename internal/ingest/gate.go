package ingest

import "time"

// Gate is the one-way initialization interlock. Conditioning stays off
// until the operator holds the designated start button after a minimum
// settling delay; once open the gate never reverts.
type Gate struct {
	delay   time.Duration
	armedAt time.Time
	enabled bool
}

// NewGate returns a closed gate whose delay clock starts at armedAt.
func NewGate(delay time.Duration, armedAt time.Time) Gate {
	return Gate{delay: delay, armedAt: armedAt}
}

// Evaluate checks the interlock against the latest known start-button
// state. Both conditions must hold in the same tick: the delay has
// fully elapsed and the button is currently pressed. It reports whether
// this call opened the gate.
func (g *Gate) Evaluate(now time.Time, startPressed bool) bool {
	if g.enabled {
		return false
	}
	if now.Sub(g.armedAt) < g.delay || !startPressed {
		return false
	}
	g.enabled = true
	return true
}

// Enabled reports whether the gate has opened.
func (g *Gate) Enabled() bool {
	return g.enabled
}
