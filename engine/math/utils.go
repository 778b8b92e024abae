package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// WrapAngle normalizes theta to (-π, π]. The result is a fixed point:
// WrapAngle(WrapAngle(x)) == WrapAngle(x).
func WrapAngle[T constraints.Float](theta T) T {
	twoPi := T(2 * m.Pi)
	mod := T(m.Mod(float64(theta), float64(twoPi)))
	if mod > T(m.Pi) {
		mod -= twoPi
	} else if mod <= -T(m.Pi) {
		mod += twoPi
	}
	return mod
}
