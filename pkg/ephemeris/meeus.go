package ephemeris

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chrissnell/analemma/pkg/astro"
)

// Meeus places the Sun and Moon with the algorithms from Meeus, Astronomical
// Algorithms (2nd ed.). UT is used in place of dynamical time; the ~70 s
// difference is well below anything the subpoint charts can show.
type Meeus struct{}

// NewMeeus creates a Meeus provider
func NewMeeus() *Meeus {
	return &Meeus{}
}

// GeocentricVector implements Provider
func (m *Meeus) GeocentricVector(body Body, t time.Time) (r3.Vec, error) {
	if err := checkRange(t); err != nil {
		return r3.Vec{}, err
	}
	jd := julian.TimeToJD(t.UTC())

	switch body {
	case Sun:
		α, δ := solar.ApparentEquatorial(jd)
		r := solar.Radius(base.J2000Century(jd))
		return sphericalToVector(α.Rad(), δ.Rad(), r), nil
	case Moon:
		λ, β, Δ := moonposition.Position(jd)
		var ε unit.Angle = nutation.MeanObliquity(jd)
		sε, cε := ε.Sincos()
		α, δ := coord.EclToEq(λ, β, sε, cε)
		return sphericalToVector(α.Rad(), δ.Rad(), Δ/KmPerAU), nil
	}
	return r3.Vec{}, fmt.Errorf("%w: %v", ErrUnknownBody, body)
}

// SiderealTime implements Provider with apparent Greenwich sidereal time
func (m *Meeus) SiderealTime(t time.Time) (float64, error) {
	if err := checkRange(t); err != nil {
		return 0, err
	}
	var st unit.Time = sidereal.Apparent(julian.TimeToJD(t.UTC()))
	return astro.Wrap24(st.Hour()), nil
}
