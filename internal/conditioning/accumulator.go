package conditioning

// Accumulator integrates a pair of momentary buttons into a bounded
// scalar, one button nudging the value down and the other up.
//
// The net delta is applied first and the result clamped once per tick,
// so holding both buttons is always a no-op, including while the value
// is pinned at either end of the range.
type Accumulator struct {
	value float64
}

// Advance applies one tick of button state and returns the new value.
func (a *Accumulator) Advance(decrement, increment bool, step float64) float64 {
	var delta float64
	if decrement {
		delta -= step
	}
	if increment {
		delta += step
	}
	a.value = clampUnit(a.value + delta)
	return a.value
}

// Value returns the current accumulated value without advancing.
func (a *Accumulator) Value() float64 {
	return a.value
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
