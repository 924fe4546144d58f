// Package astro holds the angle and calendar helpers shared by the subpoint
// and Equation of Time packages. Everything here is a pure function of its
// arguments; NaN in gives NaN out.
package astro

import "math"

// SecondsPerDegree converts degrees of hour angle to seconds of time
// (the sky turns 15° per hour, so 1° is 240 seconds).
const SecondsPerDegree = 240.0

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Wrap360 wraps an angle in degrees to the range [0, 360)
func Wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -1e-17 + 360 rounds to exactly 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// NormalizeDeg wraps an angle in degrees to the range (-180, 180]
func NormalizeDeg(deg float64) float64 {
	if deg > -180 && deg <= 180 {
		return deg
	}
	deg = Wrap360(deg)
	if deg > 180 {
		deg -= 360
	}
	return deg
}

// WrapTwoPi wraps an angle in radians to the range [0, 2π)
func WrapTwoPi(rad float64) float64 {
	twoPi := 2 * math.Pi
	rad = math.Mod(rad, twoPi)
	if rad < 0 {
		rad += twoPi
	}
	if rad >= twoPi {
		rad = 0
	}
	return rad
}

// Wrap24 wraps a time angle in hours to the range [0, 24)
func Wrap24(hours float64) float64 {
	hours = math.Mod(hours, 24)
	if hours < 0 {
		hours += 24
	}
	if hours >= 24 {
		hours = 0
	}
	return hours
}
