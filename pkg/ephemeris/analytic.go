package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chrissnell/analemma/pkg/astro"
)

// Analytic places the Sun and Moon with short truncated series for their
// ecliptic coordinates. Sun longitude is good to ~0.01°, Moon to a few
// tenths of a degree, which is plenty for drawing subpoints.
type Analytic struct{}

// NewAnalytic creates an Analytic provider
func NewAnalytic() *Analytic {
	return &Analytic{}
}

// GeocentricVector implements Provider
func (a *Analytic) GeocentricVector(body Body, t time.Time) (r3.Vec, error) {
	if err := checkRange(t); err != nil {
		return r3.Vec{}, err
	}
	T := julianCenturies(julianDay(t))
	ε := unit.AngleFromDeg(meanObliquity(T))

	switch body {
	case Sun:
		lon, dist := sunEcliptic(T)
		return eclipticToVector(unit.AngleFromDeg(lon), 0, dist, ε), nil
	case Moon:
		lon, lat, distKm := moonEcliptic(T)
		return eclipticToVector(unit.AngleFromDeg(lon), unit.AngleFromDeg(lat), distKm/KmPerAU, ε), nil
	}
	return r3.Vec{}, fmt.Errorf("%w: %v", ErrUnknownBody, body)
}

// SiderealTime implements Provider with Greenwich mean sidereal time
func (a *Analytic) SiderealTime(t time.Time) (float64, error) {
	if err := checkRange(t); err != nil {
		return 0, err
	}
	return gmstHours(julianDay(t)), nil
}

// julianDay converts a UTC time to Julian Day
func julianDay(t time.Time) float64 {
	return 2440587.5 + float64(astro.Instant(t).UnixMilli())/86400000.0
}

// julianCenturies returns Julian centuries since J2000.0
func julianCenturies(jd float64) float64 {
	return (jd - 2451545.0) / 36525.0
}

// meanObliquity is the IAU mean obliquity of the ecliptic in degrees
func meanObliquity(T float64) float64 {
	return 23.439291111 - 0.013004167*T - 0.00000164*T*T + 0.000000504*T*T*T
}

// sunEcliptic returns the Sun's geometric ecliptic longitude (degrees) and
// distance (AU) from the mean anomaly and equation of center.
func sunEcliptic(T float64) (lonDeg, distAU float64) {
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T
	M := astro.DegToRad(astro.Wrap360(357.52911 + 35999.05029*T - 0.0001537*T*T))
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T

	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(M) +
		(0.019993-0.000101*T)*math.Sin(2*M) +
		0.000289*math.Sin(3*M)

	ν := M + astro.DegToRad(C)
	distAU = 1.000001018 * (1 - e*e) / (1 + e*math.Cos(ν))
	return astro.Wrap360(L0 + C), distAU
}

// moonEcliptic returns the Moon's ecliptic longitude and latitude (degrees)
// and distance (km) from the dominant periodic terms.
func moonEcliptic(T float64) (lonDeg, latDeg, distKm float64) {
	T2, T3, T4 := T*T, T*T*T, T*T*T*T

	L := 218.3164477 + 481267.88123421*T - 0.0015786*T2 + T3/538841 - T4/65194000
	D := 297.8501921 + 445267.1114034*T - 0.0018819*T2 + T3/545868 - T4/113065000
	M := 357.5291092 + 35999.0502909*T - 0.0001536*T2 + T3/24490000
	Mp := 134.9633964 + 477198.8675055*T + 0.0087414*T2 + T3/69699 - T4/14712000
	F := 93.2720950 + 483202.0175233*T - 0.0036539*T2 - T3/3526000 + T4/863310000

	d := astro.DegToRad(astro.Wrap360(D))
	m := astro.DegToRad(astro.Wrap360(M))
	mp := astro.DegToRad(astro.Wrap360(Mp))
	f := astro.DegToRad(astro.Wrap360(F))

	lonDeg = L +
		6.288774*math.Sin(mp) +
		1.274027*math.Sin(2*d-mp) +
		0.658314*math.Sin(2*d) +
		0.213618*math.Sin(2*mp) -
		0.185116*math.Sin(m) -
		0.114332*math.Sin(2*f) +
		0.058793*math.Sin(2*d-2*mp) +
		0.057066*math.Sin(2*d-m-mp) +
		0.053322*math.Sin(2*d+mp) +
		0.045758*math.Sin(2*d-m)

	latDeg = 5.128122*math.Sin(f) +
		0.280602*math.Sin(mp+f) +
		0.277693*math.Sin(mp-f) +
		0.173237*math.Sin(2*d-f) +
		0.055413*math.Sin(2*d-mp+f) +
		0.046271*math.Sin(2*d-mp-f)

	distKm = 385000.56 -
		20905.355*math.Cos(mp) -
		3699.111*math.Cos(2*d-mp) -
		2955.968*math.Cos(2*d) +
		569.925*math.Cos(2*mp)

	return astro.Wrap360(lonDeg), latDeg, distKm
}

// eclipticToVector rotates ecliptic spherical coordinates about the x axis
// by the obliquity into equatorial Cartesian coordinates.
func eclipticToVector(λ, β unit.Angle, dist float64, ε unit.Angle) r3.Vec {
	sλ, cλ := λ.Sincos()
	sβ, cβ := β.Sincos()
	sε, cε := ε.Sincos()
	return r3.Vec{
		X: dist * cβ * cλ,
		Y: dist * (cβ*sλ*cε - sβ*sε),
		Z: dist * (cβ*sλ*sε + sβ*cε),
	}
}

// gmstHours computes Greenwich mean sidereal time in hours for a Julian Day
// (IAU 1982, Meeus eq. 12.4).
func gmstHours(jd float64) float64 {
	jd0 := math.Floor(jd-0.5) + 0.5
	T := (jd0 - 2451545.0) / 36525.0

	gmst := 6.697374558 + 2400.0513369*T + 0.0000258622*T*T - 1.7222e-9*T*T*T
	gmst += 1.00273790935 * (jd - jd0) * 24.0

	return astro.Wrap24(gmst)
}
