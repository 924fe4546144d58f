// Package subpoint finds the point on the Earth directly beneath the Sun or
// Moon at a given instant, and the subpoint of the fictitious mean Sun that
// clock time is based on.
package subpoint

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/coord"
	"github.com/chrissnell/analemma/pkg/ephemeris"
)

// Subpoint is a geographic position in degrees. Lat is in [-90, 90], Lon is
// east positive in (-180, 180].
type Subpoint struct {
	Lat float64 `json:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" msgpack:"lon"`
}

// Valid reports whether both coordinates are finite
func (s Subpoint) Valid() bool {
	return !math.IsNaN(s.Lat) && !math.IsNaN(s.Lon) && !math.IsInf(s.Lat, 0) && !math.IsInf(s.Lon, 0)
}

// Snapshot holds every subpoint the UI draws for one instant
type Snapshot struct {
	Time             time.Time `json:"time" msgpack:"time"`
	Sun              Subpoint  `json:"sun" msgpack:"sun"`
	Moon             Subpoint  `json:"moon" msgpack:"moon"`
	MeanSun          *Subpoint `json:"meanSun,omitempty" msgpack:"meanSun,omitempty"`
	MoonIllumination float64   `json:"moonIllumination" msgpack:"moonIllumination"`
}

// Resolver turns provider vectors into subpoints
type Resolver struct {
	provider ephemeris.Provider
}

// NewResolver creates a resolver backed by provider
func NewResolver(provider ephemeris.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Provider returns the ephemeris the resolver reads from
func (r *Resolver) Provider() ephemeris.Provider {
	return r.provider
}

// Fix is a resolved body position: the raw provider vector, its equatorial
// angles, and the subpoint under it.
type Fix struct {
	Vector   r3.Vec
	RAHours  float64
	DecDeg   float64
	Subpoint Subpoint
}

// Locate resolves body at t. Provider errors are wrapped, never retried.
func (r *Resolver) Locate(body ephemeris.Body, t time.Time) (Fix, error) {
	t = astro.Instant(t)

	v, err := r.provider.GeocentricVector(body, t)
	if err != nil {
		return Fix{}, fmt.Errorf("error locating %v: %w", body, err)
	}
	st, err := r.provider.SiderealTime(t)
	if err != nil {
		return Fix{}, fmt.Errorf("error reading sidereal time: %w", err)
	}

	return fixFromVector(v, st), nil
}

// fixFromVector places the geocentric vector v under Greenwich sidereal
// time st (hours).
func fixFromVector(v r3.Vec, st float64) Fix {
	ra, dec := coord.VectorToRaDec(v)
	return Fix{
		Vector:  v,
		RAHours: ra,
		DecDeg:  dec,
		Subpoint: Subpoint{
			Lat: dec,
			Lon: coord.LongitudeFromRaAndSiderealTime(ra, st),
		},
	}
}

// FromBody returns the subpoint of body at t
func (r *Resolver) FromBody(body ephemeris.Body, t time.Time) (Subpoint, error) {
	fix, err := r.Locate(body, t)
	if err != nil {
		return Subpoint{}, err
	}
	return fix.Subpoint, nil
}

// MeanSun returns the subpoint of the mean Sun: on the equator, turning
// uniformly westward 360° per UTC day and crossing longitude 180° at UTC
// midnight.
func MeanSun(t time.Time) Subpoint {
	return Subpoint{
		Lat: 0,
		Lon: astro.NormalizeDeg(180 - 360*astro.UTCDayFraction(t)),
	}
}

// Subpoints collects the Sun and Moon subpoints at t, plus the mean Sun when
// includeMean is set.
func (r *Resolver) Subpoints(t time.Time, includeMean bool) (Snapshot, error) {
	t = astro.Instant(t)

	sunVec, err := r.provider.GeocentricVector(ephemeris.Sun, t)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error locating sun: %w", err)
	}
	moonVec, err := r.provider.GeocentricVector(ephemeris.Moon, t)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error locating moon: %w", err)
	}
	st, err := r.provider.SiderealTime(t)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error reading sidereal time: %w", err)
	}

	snap := Snapshot{
		Time: t,
		Sun:  fixFromVector(sunVec, st).Subpoint,
		Moon: fixFromVector(moonVec, st).Subpoint,
	}

	// Illuminated fraction from the Sun-Moon elongation, taking the phase
	// angle as its supplement.
	elong := astro.DegToRad(coord.Elongation(sunVec, moonVec))
	snap.MoonIllumination = (1 - math.Cos(elong)) / 2

	if includeMean {
		m := MeanSun(t)
		snap.MeanSun = &m
	}
	return snap, nil
}
