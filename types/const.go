package types

import "math"

// Threshold for treating float comparison deltas as zero.
const floatCmpEpsilon = 1e-7

// Convert degrees to radians.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180.0
}

// Clamp value to [min, max].
func Clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Mix performs linear interpolation between a and b.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}
