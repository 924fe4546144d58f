// Package kepler is a single-ellipse, fixed-eccentricity model of the Earth's
// orbit used only to draw the illustrative orbit diagram and its speed curve.
// It never feeds real subpoints; those come from an ephemeris.
package kepler

import (
	"math"

	"github.com/chrissnell/analemma/pkg/astro"
)

const (
	// Eccentricity of the illustrative orbit
	Eccentricity = 0.0167

	// SemiMajorAxis of the illustrative orbit in AU
	SemiMajorAxis = 1.0

	// Iterations is the fixed Newton budget of Solve. With e = 0.0167 the
	// residual is below 1e-12 long before the budget runs out.
	Iterations = 6
)

// State is the orbit position for one mean anomaly
type State struct {
	MeanAnomaly      float64 `json:"meanAnomaly" msgpack:"meanAnomaly"`
	EccentricAnomaly float64 `json:"eccentricAnomaly" msgpack:"eccentricAnomaly"`
	TrueAnomaly      float64 `json:"trueAnomaly" msgpack:"trueAnomaly"` // radians, [0, 2π)
	Radius           float64 `json:"radius" msgpack:"radius"`           // AU
	Speed            float64 `json:"speed" msgpack:"speed"`             // vis-viva shape, 1 at r = a
}

// XY returns the position in the orbit plane with the Sun at the origin and
// perihelion on the +x axis.
func (s State) XY() (x, y float64) {
	sin, cos := math.Sincos(s.TrueAnomaly)
	return s.Radius * cos, s.Radius * sin
}

// Solve returns the eccentric anomaly E for mean anomaly M (radians) by
// running exactly Iterations Newton steps on E - e·sin(E) = M.
func Solve(M, e float64) float64 {
	E := M
	for i := 0; i < Iterations; i++ {
		E -= step(E, M, e)
	}
	return E
}

// SolveTolerance iterates until the Newton correction drops below tol or
// maxIter steps have run, reporting whether it converged. Use it for
// eccentricities where the fixed budget of Solve is not enough.
func SolveTolerance(M, e, tol float64, maxIter int) (E float64, converged bool) {
	E = M
	if e > 0.8 {
		// Starting at π keeps Newton from overshooting near perihelion
		E = math.Pi
	}
	for i := 0; i < maxIter; i++ {
		d := step(E, M, e)
		E -= d
		if math.Abs(d) < tol {
			return E, true
		}
	}
	return E, false
}

func step(E, M, e float64) float64 {
	f := E - e*math.Sin(E) - M
	df := 1 - e*math.Cos(E)
	if df == 0 {
		df = 1
	}
	return f / df
}

// StateAt solves the illustrative orbit at mean anomaly M
func StateAt(M float64) State {
	e := Eccentricity
	E := Solve(M, e)
	sinE, cosE := math.Sincos(E)

	nu := math.Atan2(math.Sqrt(1-e*e)*sinE, cosE-e)
	r := SemiMajorAxis * (1 - e*cosE)

	return State{
		MeanAnomaly:      M,
		EccentricAnomaly: E,
		TrueAnomaly:      astro.WrapTwoPi(nu),
		Radius:           r,
		Speed:            math.Sqrt(math.Max(0, 2/r-1)),
	}
}

// StateForDay returns the orbit state day days after perihelion in a year
// of yearDays days.
func StateForDay(day, yearDays int) State {
	return StateAt(2 * math.Pi * float64(day) / float64(yearDays))
}

// Path returns one State per day over a full orbit
func Path(yearDays int) []State {
	if yearDays <= 0 {
		return nil
	}
	path := make([]State, yearDays)
	for day := range path {
		path[day] = StateForDay(day, yearDays)
	}
	return path
}
