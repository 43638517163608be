package tonecurve

import (
	"fmt"
	"math"
)

// LUT holds one 256 entry table per color channel (red, green, blue).
type LUT [3][256]uint8

// IdentityLUT returns a LUT that maps every value to itself.
func IdentityLUT() *LUT {
	var l LUT
	for ch := range l {
		for i := range l[ch] {
			l[ch][i] = uint8(i)
		}
	}
	return &l
}

// BuildLUT composes the curves of cs into a LUT.
//
// Every channel starts from identity, receives its own curve first and the composite
// curve second. Swapping the two changes output values.
func BuildLUT(cs *CurveSet) (*LUT, error) {
	if len(cs.Curves) < minCurves {
		return nil, fmt.Errorf("%w: %d curves, at least %d required", ErrMalformedCurveFile, len(cs.Curves), minCurves)
	}

	var l LUT
	for ch := range l {
		table := identityTable()
		if err := ApplyCurve(&table, cs.Channel(ch)); err != nil {
			return nil, fmt.Errorf("channel %d curve: %w", ch, err)
		}
		if err := ApplyCurve(&table, cs.Composite()); err != nil {
			return nil, fmt.Errorf("composite curve: %w", err)
		}
		for i, v := range table {
			l[ch][i] = clampLevel(v)
		}
	}
	return &l, nil
}

// ApplyCurve replaces every entry v of table with round(f(v)), f being the
// interpolator of c. Rounding is half to even, values are not clamped.
func ApplyCurve(table *[256]int, c Curve) error {
	f, err := NewInterpolator(c)
	if err != nil {
		return err
	}
	for i, v := range table {
		table[i] = int(math.RoundToEven(f(float64(v))))
	}
	return nil
}

// Map returns the transformed value of v on band b. Bands past the third
// are returned unchanged.
func (l *LUT) Map(b int, v uint8) uint8 {
	if b >= len(l) {
		return v
	}
	return l[b][v]
}

func identityTable() [256]int {
	var t [256]int
	for i := range t {
		t[i] = i
	}
	return t
}

func clampLevel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
