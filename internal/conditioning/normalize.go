package conditioning

// Raw axis extremes of the kernel joystick interface. Values are signed
// 16-bit, so the negative range runs one count deeper than the positive.
const (
	RawAxisMaxNegative = 32768.0
	RawAxisMaxPositive = 32767.0
)

// Normalizer maps raw device counts onto [-1, 1].
//
// The two halves of the range scale independently so both extremes land
// exactly on -1 and +1 despite the asymmetric integer range.
type Normalizer struct {
	NegativeMax float64
	PositiveMax float64
}

// DefaultNormalizer returns a Normalizer for the signed 16-bit axis range.
func DefaultNormalizer() Normalizer {
	return Normalizer{NegativeMax: RawAxisMaxNegative, PositiveMax: RawAxisMaxPositive}
}

// Apply scales one raw sample to [-1, 1].
func (n Normalizer) Apply(raw float64) float64 {
	if raw < 0 {
		return raw / n.NegativeMax
	}
	return raw / n.PositiveMax
}
