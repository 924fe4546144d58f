package eot

import (
	"math"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/coord"
	"github.com/chrissnell/analemma/pkg/kepler"
)

const (
	// perihelionDay is the zero-based day of year of perihelion (early January)
	perihelionDay = 2

	// perihelionLongitudeDeg is the Sun's geocentric ecliptic longitude at perihelion
	perihelionLongitudeDeg = 282.9372
)

// geometrySeries derives the two illustrative curves behind the
// decomposition from the Kepler model alone: the orbital speed factor, and
// dα/dλ, the rate at which ecliptic motion shows up in right ascension.
func geometrySeries(yearDays int) (speed, projection []float64) {
	sε, cε := math.Sincos(astro.DegToRad(coord.ObliquityDeg))

	speed = make([]float64, yearDays)
	projection = make([]float64, yearDays)
	for day := 0; day < yearDays; day++ {
		st := kepler.StateForDay((day-perihelionDay+yearDays)%yearDays, yearDays)
		speed[day] = st.Speed

		λ := astro.DegToRad(astro.Wrap360(astro.RadToDeg(st.TrueAnomaly) + perihelionLongitudeDeg))
		sλ := math.Sin(λ)
		projection[day] = cε / (1 - sε*sε*sλ*sλ)
	}
	return speed, projection
}
