package eot

import (
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/coord"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

// MaxCapacity bounds how many years a SeriesCache keeps resident
const MaxCapacity = 3

// CacheStats counts cache lookups
type CacheStats struct {
	Hits   int `json:"hits" msgpack:"hits"`
	Misses int `json:"misses" msgpack:"misses"`
}

// seriesKey identifies a cached year
type seriesKey struct {
	year     int
	yearDays int
}

// SeriesCache keeps the most recently used YearSeries, keyed by
// (year, yearDays). Entries are replaced whole, never updated in place, so a
// caller holding an older *YearSeries keeps a consistent snapshot.
type SeriesCache struct {
	engine   *Engine
	capacity int
	logger   *zap.SugaredLogger
	entries  *lru.Cache[seriesKey, *YearSeries]

	mu    sync.Mutex
	stats CacheStats
}

// NewSeriesCache creates a cache holding up to capacity years. Capacity is
// clamped to [1, MaxCapacity]; 1 gives single-slot behaviour.
func NewSeriesCache(engine *Engine, capacity int) *SeriesCache {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}

	// lru.New only fails for a non-positive size
	entries, _ := lru.New[seriesKey, *YearSeries](capacity)

	return &SeriesCache{
		engine:   engine,
		capacity: capacity,
		logger:   engine.logger,
		entries:  entries,
	}
}

// Capacity returns the number of years the cache keeps
func (c *SeriesCache) Capacity() int {
	return c.capacity
}

// Ensure returns the series for (year, yearDays), computing and publishing
// them if they are not resident.
func (c *SeriesCache) Ensure(year, yearDays int) (*YearSeries, error) {
	key := seriesKey{year: year, yearDays: yearDays}

	ys, ok := c.entries.Get(key)
	c.count(ok)
	if ok {
		return ys, nil
	}

	c.logger.Debugw("series cache miss", "year", year, "days", yearDays)

	// Computed without holding the cache; a concurrent miss for the same key
	// computes an identical result and the later Add wins.
	ys, err := c.engine.Compute(year, yearDays)
	if err != nil {
		return nil, err
	}
	if evicted := c.entries.Add(key, ys); evicted {
		c.logger.Debugw("series cache evicted a year", "resident", c.Resident())
	}
	return ys, nil
}

// Resident returns the years currently cached, most recently used first
func (c *SeriesCache) Resident() []int {
	keys := c.entries.Keys()
	slices.Reverse(keys)

	years := make([]int, len(keys))
	for i, k := range keys {
		years[i] = k.year
	}
	return years
}

// Stats returns hit and miss counts
func (c *SeriesCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *SeriesCache) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
}

// DeclinationCache keeps the real Sun's noon declination for every day of a
// single year.
type DeclinationCache struct {
	provider ephemeris.Provider

	mu     sync.Mutex
	year   int
	series *Series
}

// NewDeclinationCache creates an empty cache reading from resolver's provider
func NewDeclinationCache(resolver *subpoint.Resolver) *DeclinationCache {
	return &DeclinationCache{provider: resolver.Provider()}
}

// SunDeclinationForYear returns the Sun's declination in degrees at UTC
// noon of each day of year. A different year replaces the cached one. If
// any day cannot be resolved the call fails and the cache is left as it was.
func (c *DeclinationCache) SunDeclinationForYear(year int) (*Series, error) {
	c.mu.Lock()
	if c.series != nil && c.year == year {
		s := c.series
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	days := astro.YearDays(year)
	values := make([]float64, days)
	for day := 0; day < days; day++ {
		v, err := c.provider.GeocentricVector(ephemeris.Sun, astro.DayNoon(year, day))
		if err != nil {
			return nil, fmt.Errorf("error computing declination for %d day %d: %w", year, day, err)
		}
		_, values[day] = coord.VectorToRaDec(v)
	}
	s := newSeries(values)

	c.mu.Lock()
	c.year = year
	c.series = s
	c.mu.Unlock()
	return s, nil
}
