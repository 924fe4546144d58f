// Package eot decomposes the Equation of Time for a calendar year into the
// part caused by orbital eccentricity and the part caused by obliquity, and
// keeps the resulting per-day series in small year-keyed caches.
//
// The decomposition samples the real Sun once per day at UTC noon and again
// one sidereal day later. Over that interval the mean Sun and the real Sun
// both come back near the same meridian, so the small longitude differences
// between them are the daily increments of the Equation of Time. Summing the
// increments through the year gives the familiar curves up to an additive
// constant, which is pinned to reference values on day 0.
package eot

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/coord"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

// ErrYearDays is returned when a day count does not match the year's calendar.
var ErrYearDays = errors.New("day count does not match year")

const (
	// MeanDailyMotionDeg is the Sun's mean ecliptic motion per mean solar day
	MeanDailyMotionDeg = 360 / 365.25

	// ObliquityAnchorSeconds is where the accumulated obliquity curve starts
	// on day 0, chosen to center it on the chart.
	ObliquityAnchorSeconds = -180.0

	// MaxYear is the last year with a complete series. The final day's
	// second sample lands early in the following year.
	MaxYear = ephemeris.MaxYear - 1

	// minMaxAbs keeps chart scaling sane when every series is flat
	minMaxAbs = 0.5
)

// stepMotionDeg is the mean motion over one sampling step (a sidereal day)
var stepMotionDeg = MeanDailyMotionDeg * astro.SiderealDay.Seconds() / 86400

// YearSeries holds every per-day series computed for one year. It is never
// modified after it is returned.
type YearSeries struct {
	Year     int
	YearDays int

	// Accumulated contributions to the Equation of Time, seconds
	Eccentricity *Series
	Obliquity    *Series
	Combined     *Series

	// Illustrative geometry from the Kepler model
	OrbitSpeed          *Series
	ObliquityProjection *Series

	// MaxAbs is the largest magnitude across the three accumulated series,
	// at least 0.5
	MaxAbs float64

	// Gaps lists the days whose ephemeris lookups failed. Their daily
	// contributions were taken as zero.
	Gaps []int

	ComputedAt time.Time
}

// HasGaps reports whether any day was filled with a zero contribution
func (ys *YearSeries) HasGaps() bool {
	return len(ys.Gaps) > 0
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger for gap warnings and timing
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine computes YearSeries from a subpoint resolver
type Engine struct {
	resolver *subpoint.Resolver
	logger   *zap.SugaredLogger
}

// NewEngine creates an engine that reads positions through resolver
func NewEngine(resolver *subpoint.Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolver returns the resolver the engine samples
func (e *Engine) Resolver() *subpoint.Resolver {
	return e.resolver
}

// dailyContribution is one day's raw increments, seconds
type dailyContribution struct {
	eccentricity float64
	obliquity    float64
	combined     float64
}

// sampleDay computes the raw increments for a day. start is the resolved
// real Sun at the day's noon, returned so day 0 can anchor the combined
// curve; it is nil when the noon lookup itself failed.
func (e *Engine) sampleDay(year, day int) (dailyContribution, *subpoint.Fix, error) {
	t0 := astro.DayNoon(year, day)
	t1 := t0.Add(astro.SiderealDay)

	start, err := e.resolver.Locate(ephemeris.Sun, t0)
	if err != nil {
		return dailyContribution{}, nil, err
	}
	if !start.Subpoint.Valid() {
		return dailyContribution{}, nil, fmt.Errorf("invalid noon subpoint on day %d", day)
	}
	end, err := e.resolver.Locate(ephemeris.Sun, t1)
	if err != nil {
		return dailyContribution{}, &start, err
	}
	if !end.Subpoint.Valid() {
		return dailyContribution{}, &start, fmt.Errorf("invalid subpoint one sidereal day after noon on day %d", day)
	}

	mean0 := subpoint.MeanSun(t0)
	mean1 := subpoint.MeanSun(t1)

	λ0 := coord.VectorToEclipticLonDeg(start.Vector)
	λ1 := coord.VectorToEclipticLonDeg(end.Vector)
	dλ := astro.NormalizeDeg(λ1 - λ0)

	realDLon := astro.NormalizeDeg(end.Subpoint.Lon - start.Subpoint.Lon)
	meanDLon := astro.NormalizeDeg(mean1.Lon - mean0.Lon)

	return dailyContribution{
		eccentricity: (dλ - stepMotionDeg) * astro.SecondsPerDegree,
		obliquity:    (realDLon - dλ) * astro.SecondsPerDegree,
		combined:     (meanDLon - realDLon) * astro.SecondsPerDegree,
	}, &start, nil
}

// Compute runs the full decomposition for year. yearDays must match the
// calendar; ephemeris failures on individual days do not fail the call but
// are recorded in Gaps.
func (e *Engine) Compute(year, yearDays int) (*YearSeries, error) {
	if yearDays != astro.YearDays(year) {
		return nil, fmt.Errorf("%w: %d has %d days, got %d", ErrYearDays, year, astro.YearDays(year), yearDays)
	}
	if year < ephemeris.MinYear || year > MaxYear {
		return nil, fmt.Errorf("%w: series year %d", ephemeris.ErrOutOfRange, year)
	}
	started := time.Now()

	ecc := make([]float64, yearDays)
	obl := make([]float64, yearDays)
	comb := make([]float64, yearDays)
	var gaps []int
	var eotAnchor float64

	for day := 0; day < yearDays; day++ {
		c, start, err := e.sampleDay(year, day)
		if day == 0 && start != nil {
			mean := subpoint.MeanSun(astro.DayNoon(year, 0))
			eotAnchor = astro.NormalizeDeg(mean.Lon-start.Subpoint.Lon) * astro.SecondsPerDegree
		}
		if err != nil {
			e.logger.Warnw("ephemeris gap, using zero contribution", "year", year, "day", day, "error", err)
			gaps = append(gaps, day)
			continue
		}
		ecc[day] = c.eccentricity
		obl[day] = c.obliquity
		comb[day] = c.combined
	}

	floats.CumSum(ecc, ecc)
	floats.CumSum(obl, obl)
	floats.CumSum(comb, comb)

	floats.AddConst(ObliquityAnchorSeconds-obl[0], obl)
	floats.AddConst(eotAnchor-comb[0], comb)

	speed, projection := geometrySeries(yearDays)

	ys := &YearSeries{
		Year:                year,
		YearDays:            yearDays,
		Eccentricity:        newSeries(ecc),
		Obliquity:           newSeries(obl),
		Combined:            newSeries(comb),
		OrbitSpeed:          newSeries(speed),
		ObliquityProjection: newSeries(projection),
		Gaps:                gaps,
		ComputedAt:          time.Now().UTC(),
	}
	ys.MaxAbs = math.Max(minMaxAbs, math.Max(ys.Eccentricity.MaxAbs(), math.Max(ys.Obliquity.MaxAbs(), ys.Combined.MaxAbs())))

	e.logger.Debugw("computed year series", "year", year, "days", yearDays, "gaps", len(gaps), "elapsed", time.Since(started))
	return ys, nil
}
