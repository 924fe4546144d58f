// Package solar holds closed-form solar helpers used next to the Equation of
// Time series: day length from the hour angle, a reference Equation of Time,
// and sunrise/sunset times for a location.
package solar

import (
	"math"

	"github.com/chrissnell/analemma/pkg/astro"
)

// Altitudes (degrees) of the Sun's center for the usual horizon events
const (
	// ApparentHorizon is the Sun's center altitude when its upper limb touches
	// the horizon under standard refraction.
	ApparentHorizon      = -0.833
	CivilTwilight        = -6.0
	NauticalTwilight     = -12.0
	AstronomicalTwilight = -18.0
)

// polarLatitude is the |latitude| from which cos(lat) is treated as zero
const polarLatitude = 89.9999

// Daylight splits the 24 hours of a day into time with the Sun above and
// below a given altitude.
type Daylight struct {
	Day   float64 `json:"day" msgpack:"day"`
	Night float64 `json:"night" msgpack:"night"`
}

// DaylightHoursAtAltitude returns how long the Sun spends above altDeg at
// latitude latDeg when its declination is decDeg, from the hour angle
//
//	cos H0 = (sin alt - sin lat sin dec) / (cos lat cos dec)
//
// cos H0 >= 1 is polar night, cos H0 <= -1 polar day.
func DaylightHoursAtAltitude(latDeg, decDeg, altDeg float64) Daylight {
	if math.Abs(latDeg) >= polarLatitude {
		// At the pole the Sun circles at altitude ±dec all day
		elevation := decDeg
		if latDeg < 0 {
			elevation = -decDeg
		}
		if elevation > altDeg {
			return Daylight{Day: 24, Night: 0}
		}
		if elevation < altDeg {
			return Daylight{Day: 0, Night: 24}
		}
		return Daylight{Day: 12, Night: 12}
	}

	lat := astro.DegToRad(latDeg)
	dec := astro.DegToRad(decDeg)
	alt := astro.DegToRad(altDeg)

	cosH0 := (math.Sin(alt) - math.Sin(lat)*math.Sin(dec)) / (math.Cos(lat) * math.Cos(dec))

	switch {
	case cosH0 >= 1:
		return Daylight{Day: 0, Night: 24}
	case cosH0 <= -1:
		return Daylight{Day: 24, Night: 0}
	}

	day := 24 * math.Acos(cosH0) / math.Pi
	return Daylight{Day: day, Night: 24 - day}
}
