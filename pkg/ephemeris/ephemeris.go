// Package ephemeris defines the contract the subpoint engine needs from an
// ephemeris, and ships two providers for it: one backed by the Meeus
// algorithms in github.com/soniakeys/meeus, and a lighter closed-form model
// that needs nothing but the clock.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownBody is returned when a provider is asked for a body it cannot place.
var ErrUnknownBody = errors.New("unknown body")

// ErrOutOfRange is returned when the requested instant is outside the range a provider supports.
var ErrOutOfRange = errors.New("instant outside ephemeris range")

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown ephemeris backend")

// KmPerAU is the astronomical unit in kilometers
const KmPerAU = 149597870.7

// Supported year range for both providers. The series behind them are
// polynomial in time and degrade quickly outside a few millennia of J2000.
const (
	MinYear = -2000
	MaxYear = 6000
)

// Body identifies a celestial body
type Body int

const (
	// Sun is the Sun
	Sun Body = iota + 1
	// Moon is the Earth's Moon
	Moon
)

func (b Body) String() string {
	switch b {
	case Sun:
		return "sun"
	case Moon:
		return "moon"
	}
	return fmt.Sprintf("body(%d)", int(b))
}

// ParseBody maps a lowercase body name to a Body
func ParseBody(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "moon":
		return Moon, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

// Provider supplies geocentric positions and sidereal time. Implementations
// must be safe for concurrent use.
type Provider interface {
	// GeocentricVector returns the body's position in equatorial-of-date
	// Cartesian coordinates (AU).
	GeocentricVector(body Body, t time.Time) (r3.Vec, error)

	// SiderealTime returns Greenwich sidereal time in hours, [0, 24).
	SiderealTime(t time.Time) (float64, error)
}

// Backend names accepted by New
const (
	BackendMeeus    = "meeus"
	BackendAnalytic = "analytic"
)

// New returns the provider registered under backend. An empty name selects meeus.
func New(backend string) (Provider, error) {
	switch strings.ToLower(backend) {
	case "", BackendMeeus:
		return NewMeeus(), nil
	case BackendAnalytic:
		return NewAnalytic(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// checkRange rejects instants the providers cannot place sensibly
func checkRange(t time.Time) error {
	if y := t.UTC().Year(); y < MinYear || y > MaxYear {
		return fmt.Errorf("%w: %s", ErrOutOfRange, t.UTC().Format(time.RFC3339))
	}
	return nil
}

// sphericalToVector builds a Cartesian vector from right ascension and
// declination (radians) and a distance.
func sphericalToVector(raRad, decRad, dist float64) r3.Vec {
	sinDec, cosDec := math.Sincos(decRad)
	sinRA, cosRA := math.Sincos(raRad)
	return r3.Vec{
		X: dist * cosDec * cosRA,
		Y: dist * cosDec * sinRA,
		Z: dist * sinDec,
	}
}
