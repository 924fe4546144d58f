package eot

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/solar"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

// countingProvider counts vector lookups made through it
type countingProvider struct {
	ephemeris.Provider
	vectors atomic.Int64
}

func (c *countingProvider) GeocentricVector(body ephemeris.Body, t time.Time) (r3.Vec, error) {
	c.vectors.Add(1)
	return c.Provider.GeocentricVector(body, t)
}

// gapProvider fails lookups at the listed instants
type gapProvider struct {
	ephemeris.Provider
	failAt map[int64]bool
}

var errGap = errors.New("no data")

func (g gapProvider) GeocentricVector(body ephemeris.Body, t time.Time) (r3.Vec, error) {
	if g.failAt[t.UnixMilli()] {
		return r3.Vec{}, errGap
	}
	return g.Provider.GeocentricVector(body, t)
}

func newEngine(p ephemeris.Provider) *Engine {
	return NewEngine(subpoint.NewResolver(p))
}

func TestSunDeclinationForYear(t *testing.T) {
	for _, year := range []int{2023, 2024} {
		p := &countingProvider{Provider: ephemeris.NewMeeus()}
		cache := NewDeclinationCache(subpoint.NewResolver(p))

		first, err := cache.SunDeclinationForYear(year)
		if err != nil {
			t.Fatalf("SunDeclinationForYear(%d) error = %v", year, err)
		}
		if first.Len() != astro.YearDays(year) {
			t.Errorf("len = %d, expected %d", first.Len(), astro.YearDays(year))
		}
		calls := p.vectors.Load()
		if calls != int64(astro.YearDays(year)) {
			t.Errorf("miss made %d provider calls, expected %d", calls, astro.YearDays(year))
		}

		second, err := cache.SunDeclinationForYear(year)
		if err != nil {
			t.Fatalf("SunDeclinationForYear(%d) error = %v", year, err)
		}
		if p.vectors.Load() != calls {
			t.Errorf("hit made %d extra provider calls", p.vectors.Load()-calls)
		}
		for day := 0; day < first.Len(); day++ {
			if math.Float64bits(first.At(day)) != math.Float64bits(second.At(day)) {
				t.Fatalf("day %d differs between calls: %v vs %v", day, first.At(day), second.At(day))
			}
		}

		if first.Max() < 23.3 || first.Max() > 23.5 {
			t.Errorf("max declination = %.3f, expected ~23.44", first.Max())
		}
		if first.Min() > -23.3 || first.Min() < -23.5 {
			t.Errorf("min declination = %.3f, expected ~-23.44", first.Min())
		}
	}
}

func TestDeclinationCacheReplacesYear(t *testing.T) {
	p := &countingProvider{Provider: ephemeris.NewAnalytic()}
	cache := NewDeclinationCache(subpoint.NewResolver(p))

	a, _ := cache.SunDeclinationForYear(2023)
	b, _ := cache.SunDeclinationForYear(2024)
	if b.Len() != 366 {
		t.Errorf("2024 table has %d days", b.Len())
	}
	if a.Len() != 365 {
		t.Errorf("retained 2023 table changed length to %d", a.Len())
	}

	before := p.vectors.Load()
	if _, err := cache.SunDeclinationForYear(2023); err != nil {
		t.Fatal(err)
	}
	if p.vectors.Load()-before != 365 {
		t.Errorf("switching back to 2023 should recompute, made %d calls", p.vectors.Load()-before)
	}
}

func TestDeclinationCacheFailure(t *testing.T) {
	p := gapProvider{Provider: ephemeris.NewAnalytic(), failAt: map[int64]bool{astro.DayNoon(2023, 120).UnixMilli(): true}}
	cache := NewDeclinationCache(subpoint.NewResolver(p))

	if _, err := cache.SunDeclinationForYear(2023); !errors.Is(err, errGap) {
		t.Errorf("error = %v, expected the provider error", err)
	}
}

func TestComputeAnchors(t *testing.T) {
	engine := newEngine(ephemeris.NewMeeus())

	for _, year := range []int{2023, 2024} {
		ys, err := engine.Compute(year, astro.YearDays(year))
		if err != nil {
			t.Fatalf("Compute(%d) error = %v", year, err)
		}

		for _, s := range []*Series{ys.Eccentricity, ys.Obliquity, ys.Combined, ys.OrbitSpeed, ys.ObliquityProjection} {
			if s.Len() != astro.YearDays(year) {
				t.Fatalf("series length %d, expected %d", s.Len(), astro.YearDays(year))
			}
		}

		if got := ys.Obliquity.At(0); math.Abs(got-ObliquityAnchorSeconds) > 1e-9 {
			t.Errorf("obliquity day 0 = %v, expected %v", got, ObliquityAnchorSeconds)
		}

		noon := astro.DayNoon(year, 0)
		sun, err := engine.Resolver().FromBody(ephemeris.Sun, noon)
		if err != nil {
			t.Fatal(err)
		}
		direct := astro.NormalizeDeg(subpoint.MeanSun(noon).Lon-sun.Lon) * astro.SecondsPerDegree
		if got := ys.Combined.At(0); math.Abs(got-direct) > 1e-9 {
			t.Errorf("combined day 0 = %v, expected direct EoT %v", got, direct)
		}

		if ys.HasGaps() {
			t.Errorf("unexpected gaps: %v", ys.Gaps)
		}
		if ys.MaxAbs < ys.Combined.MaxAbs() || ys.MaxAbs < ys.Obliquity.MaxAbs() || ys.MaxAbs < ys.Eccentricity.MaxAbs() {
			t.Errorf("MaxAbs %v is below a series maximum", ys.MaxAbs)
		}
	}
}

func TestComputeShape(t *testing.T) {
	engine := newEngine(ephemeris.NewMeeus())
	ys, err := engine.Compute(2024, 366)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Equation of center: 1.915° ≈ 460 s
	if m := ys.Eccentricity.MaxAbs(); m < 400 || m > 520 {
		t.Errorf("eccentricity amplitude = %.1f s, expected ~460", m)
	}

	// Reduction to the equator: ±2.47° ≈ ±592 s
	if pp := ys.Obliquity.Max() - ys.Obliquity.Min(); pp < 1100 || pp > 1260 {
		t.Errorf("obliquity peak to peak = %.1f s, expected ~1180", pp)
	}

	// Increments over the year nearly cancel, the accumulated curve must
	// come back close to where it started.
	last := ys.Eccentricity.At(ys.YearDays - 1)
	if math.Abs(last) > 30 {
		t.Errorf("eccentricity drift over the year = %.1f s", last)
	}

	// The combined curve tracks the Equation of Time itself
	for _, day := range []int{0, 41, 105, 134, 207, 307, 365} {
		noon := astro.DayNoon(2024, day)
		reference := solar.EquationOfTime(noon) * 60
		if got := ys.Combined.At(day); math.Abs(got-reference) > 60 {
			t.Errorf("day %d: combined = %.1f s, reference EoT = %.1f s", day, got, reference)
		}

		sun, err := engine.Resolver().FromBody(ephemeris.Sun, noon)
		if err != nil {
			t.Fatal(err)
		}
		direct := astro.NormalizeDeg(subpoint.MeanSun(noon).Lon-sun.Lon) * astro.SecondsPerDegree
		if got := ys.Combined.At(day); math.Abs(got-direct) > 45 {
			t.Errorf("day %d: combined = %.1f s, direct EoT = %.1f s", day, got, direct)
		}
	}
}

func TestComputeGaps(t *testing.T) {
	clean, err := newEngine(ephemeris.NewAnalytic()).Compute(2023, 365)
	if err != nil {
		t.Fatal(err)
	}

	p := gapProvider{Provider: ephemeris.NewAnalytic(), failAt: map[int64]bool{astro.DayNoon(2023, 10).UnixMilli(): true}}
	gappy, err := newEngine(p).Compute(2023, 365)
	if err != nil {
		t.Fatalf("Compute() with gaps error = %v", err)
	}

	if len(gappy.Gaps) != 1 || gappy.Gaps[0] != 10 {
		t.Fatalf("Gaps = %v, expected [10]", gappy.Gaps)
	}
	if gappy.Combined.Len() != 365 {
		t.Errorf("series length %d with a gap, expected 365", gappy.Combined.Len())
	}
	if gappy.Combined.At(10) != gappy.Combined.At(9) {
		t.Errorf("gap day should repeat the previous value: %v vs %v", gappy.Combined.At(10), gappy.Combined.At(9))
	}
	for day := 0; day < 10; day++ {
		if gappy.Combined.At(day) != clean.Combined.At(day) {
			t.Errorf("day %d before the gap differs: %v vs %v", day, gappy.Combined.At(day), clean.Combined.At(day))
		}
	}
}

func TestComputeYearDaysMismatch(t *testing.T) {
	engine := newEngine(ephemeris.NewAnalytic())
	if _, err := engine.Compute(2023, 366); !errors.Is(err, ErrYearDays) {
		t.Errorf("Compute(2023, 366) error = %v, expected ErrYearDays", err)
	}
}

func TestComputeYearRange(t *testing.T) {
	engine := newEngine(ephemeris.NewAnalytic())

	for _, year := range []int{ephemeris.MaxYear, ephemeris.MinYear - 1} {
		if _, err := engine.Compute(year, astro.YearDays(year)); !errors.Is(err, ephemeris.ErrOutOfRange) {
			t.Errorf("Compute(%d) error = %v, expected ErrOutOfRange", year, err)
		}
	}

	ys, err := engine.Compute(MaxYear, astro.YearDays(MaxYear))
	if err != nil {
		t.Fatalf("Compute(%d) error = %v", MaxYear, err)
	}
	if ys.HasGaps() {
		t.Errorf("Compute(%d) gaps = %v, expected none", MaxYear, ys.Gaps)
	}
}

func TestEnsure(t *testing.T) {
	cache := NewSeriesCache(newEngine(ephemeris.NewAnalytic()), 1)

	a, err := cache.Ensure(2023, 365)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	again, err := cache.Ensure(2023, 365)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if a != again {
		t.Error("identical Ensure calls should return the same object")
	}
	if s := cache.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Errorf("stats = %+v, expected 1 hit 1 miss", s)
	}

	snapshot := a.Combined.Slice()
	b, err := cache.Ensure(2024, 366)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if b == a {
		t.Fatal("a different year should produce a new object")
	}
	if a.Year != 2023 || a.Combined.Len() != 365 {
		t.Errorf("retained entry changed: year %d, len %d", a.Year, a.Combined.Len())
	}
	for day, v := range a.Combined.Values() {
		if v != snapshot[day] {
			t.Fatalf("retained entry mutated at day %d", day)
		}
	}

	c, _ := cache.Ensure(2023, 365)
	if c == a {
		t.Error("single-slot cache should have evicted 2023")
	}

	if _, err := cache.Ensure(2023, 366); !errors.Is(err, ErrYearDays) {
		t.Errorf("Ensure(2023, 366) error = %v, expected ErrYearDays", err)
	}
}

func TestEnsureLRU(t *testing.T) {
	cache := NewSeriesCache(newEngine(ephemeris.NewAnalytic()), 2)

	y23, _ := cache.Ensure(2023, 365)
	cache.Ensure(2024, 366)
	if hit, _ := cache.Ensure(2023, 365); hit != y23 {
		t.Error("2023 should still be resident")
	}
	cache.Ensure(2025, 365)

	resident := cache.Resident()
	if len(resident) != 2 || resident[0] != 2025 || resident[1] != 2023 {
		t.Errorf("Resident() = %v, expected [2025 2023]", resident)
	}

	if NewSeriesCache(newEngine(ephemeris.NewAnalytic()), 10).Capacity() != MaxCapacity {
		t.Error("capacity should be clamped to MaxCapacity")
	}
}

func TestEnsureConcurrent(t *testing.T) {
	cache := NewSeriesCache(newEngine(ephemeris.NewAnalytic()), 2)

	var wg sync.WaitGroup
	results := make([]*YearSeries, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			year := 2023 + i%2
			ys, err := cache.Ensure(year, astro.YearDays(year))
			if err != nil {
				t.Errorf("Ensure() error = %v", err)
				return
			}
			results[i] = ys
		}(i)
	}
	wg.Wait()

	for i, ys := range results {
		if ys == nil || results[i%2] == nil {
			continue
		}
		if ys.Year != 2023+i%2 {
			t.Errorf("goroutine %d got year %d", i, ys.Year)
		}
		if ys.Combined.At(0) != results[i%2].Combined.At(0) {
			t.Errorf("goroutine %d saw different values for the same year", i)
		}
	}
}

func TestGeometrySeries(t *testing.T) {
	speed, projection := geometrySeries(365)

	fastest := 0
	for day := range speed {
		if speed[day] > speed[fastest] {
			fastest = day
		}
	}
	if fastest != perihelionDay {
		t.Errorf("fastest day = %d, expected perihelion day %d", fastest, perihelionDay)
	}

	cosEps := math.Cos(23.439291111 * math.Pi / 180)
	for day, p := range projection {
		if p < cosEps-1e-9 || p > 1/cosEps+1e-9 {
			t.Errorf("day %d: projection %v outside [cos ε, 1/cos ε]", day, p)
		}
	}
}

func TestAnalemma(t *testing.T) {
	p := ephemeris.NewAnalytic()
	engine := newEngine(p)
	ys, err := engine.Compute(2023, 365)
	if err != nil {
		t.Fatal(err)
	}
	decl, err := NewDeclinationCache(engine.Resolver()).SunDeclinationForYear(2023)
	if err != nil {
		t.Fatal(err)
	}

	points, err := Analemma(ys, decl)
	if err != nil {
		t.Fatalf("Analemma() error = %v", err)
	}
	if len(points) != 365 {
		t.Fatalf("len = %d", len(points))
	}
	if points[171].DeclinationDeg < 23 {
		t.Errorf("June 21 declination = %.2f", points[171].DeclinationDeg)
	}
	if !points[0].Date.Equal(astro.DayNoon(2023, 0)) {
		t.Errorf("first point date = %v", points[0].Date)
	}

	other, _ := NewDeclinationCache(engine.Resolver()).SunDeclinationForYear(2024)
	if _, err := Analemma(ys, other); err == nil {
		t.Error("expected an error for mismatched day counts")
	}
}

func TestSeries(t *testing.T) {
	s := newSeries([]float64{-3, 1, 2})
	if s.Min() != -3 || s.Max() != 2 || s.MaxAbs() != 3 || s.Mean() != 0 {
		t.Errorf("summary = min %v max %v maxAbs %v mean %v", s.Min(), s.Max(), s.MaxAbs(), s.Mean())
	}

	out := s.Slice()
	out[0] = 100
	if s.At(0) != -3 {
		t.Error("Slice() should return a copy")
	}

	n := 0
	for range s.Values() {
		n++
		break
	}
	if n != 1 {
		t.Error("Values() should stop when the consumer breaks")
	}

	if d := s.Data(); len(d.Values) != 3 || d.MaxAbs != 3 {
		t.Errorf("Data() = %+v", d)
	}
}
