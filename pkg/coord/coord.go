// Package coord converts ephemeris vectors into the angles the subpoint
// engine works in: right ascension and declination, ecliptic longitude, and
// geographic longitude.
package coord

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chrissnell/analemma/pkg/astro"
)

// ObliquityDeg is the fixed mean obliquity of the ecliptic (J2000) used for
// the ecliptic longitude rotation.
const ObliquityDeg = 23.439291111

var sinObliquity, cosObliquity = math.Sincos(astro.DegToRad(ObliquityDeg))

// VectorToRaDec returns right ascension in hours [0, 24) and declination in
// degrees for an equatorial vector.
func VectorToRaDec(v r3.Vec) (raHours, decDeg float64) {
	ra := astro.WrapTwoPi(math.Atan2(v.Y, v.X))
	dec := math.Atan2(v.Z, math.Hypot(v.X, v.Y))
	return ra * 12 / math.Pi, astro.RadToDeg(dec)
}

// VectorToEclipticLonDeg rotates an equatorial vector into the ecliptic frame
// and returns its longitude in degrees, [0, 360).
func VectorToEclipticLonDeg(v r3.Vec) float64 {
	y := v.Y*cosObliquity + v.Z*sinObliquity
	return astro.Wrap360(astro.RadToDeg(math.Atan2(y, v.X)))
}

// LongitudeFromRaAndSiderealTime returns the geographic longitude (east
// positive, (-180, 180]) of the meridian where a body with the given right
// ascension is overhead.
func LongitudeFromRaAndSiderealTime(raHours, siderealHours float64) float64 {
	return astro.NormalizeDeg((raHours - siderealHours) * 15)
}

// Elongation returns the angular separation in degrees between two
// direction vectors.
func Elongation(a, b r3.Vec) float64 {
	c := r3.Cos(a, b)
	// rounding can push the cosine just past ±1
	c = math.Max(-1, math.Min(1, c))
	return astro.RadToDeg(math.Acos(c))
}
