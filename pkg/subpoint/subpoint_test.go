package subpoint

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chrissnell/analemma/pkg/ephemeris"
)

// failingProvider fails every lookup with err
type failingProvider struct {
	err error
}

func (f failingProvider) GeocentricVector(ephemeris.Body, time.Time) (r3.Vec, error) {
	return r3.Vec{}, f.err
}

func (f failingProvider) SiderealTime(time.Time) (float64, error) {
	return 0, f.err
}

// fixedProvider puts every body at the same vector under a fixed sidereal time
type fixedProvider struct {
	vec      r3.Vec
	sidereal float64
}

func (f fixedProvider) GeocentricVector(ephemeris.Body, time.Time) (r3.Vec, error) {
	return f.vec, nil
}

func (f fixedProvider) SiderealTime(time.Time) (float64, error) {
	return f.sidereal, nil
}

func TestMeanSun(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
	}{
		{"UTC midnight", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 180},
		{"UTC noon", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), 0},
		{"06:00", time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC), 90},
		{"18:00", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), -90},
		{"just before midnight", time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC), -179.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanSun(tt.time)
			if got.Lat != 0 {
				t.Errorf("mean sun latitude = %v, expected 0", got.Lat)
			}
			if math.Abs(got.Lon-tt.expected) > 1e-9 {
				t.Errorf("mean sun longitude = %v, expected %v", got.Lon, tt.expected)
			}
		})
	}
}

func TestFromBodyFixedGeometry(t *testing.T) {
	// Body at RA 3h, Dec 0 with sidereal time 1h sits over longitude 30°E
	ra := 3.0 * math.Pi / 12
	r := NewResolver(fixedProvider{vec: r3.Vec{X: math.Cos(ra), Y: math.Sin(ra)}, sidereal: 1})

	sp, err := r.FromBody(ephemeris.Sun, time.Now())
	if err != nil {
		t.Fatalf("FromBody() error = %v", err)
	}
	if math.Abs(sp.Lat) > 1e-9 || math.Abs(sp.Lon-30) > 1e-9 {
		t.Errorf("FromBody() = %+v, expected {0 30}", sp)
	}
}

func TestFromBodySun(t *testing.T) {
	r := NewResolver(ephemeris.NewMeeus())

	tests := []struct {
		name   string
		time   time.Time
		lat    float64
		lon    float64
		latTol float64
		lonTol float64
	}{
		{
			// Equation of time is close to zero in mid-April
			name:   "mid April noon",
			time:   time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC),
			lat:    9.9,
			lon:    0,
			latTol: 0.3,
			lonTol: 0.3,
		},
		{
			// Early November the Sun runs ~16 minutes fast, ~4° west
			name:   "early November noon",
			time:   time.Date(2024, 11, 3, 12, 0, 0, 0, time.UTC),
			lat:    -15.2,
			lon:    -4.1,
			latTol: 0.4,
			lonTol: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := r.FromBody(ephemeris.Sun, tt.time)
			if err != nil {
				t.Fatalf("FromBody() error = %v", err)
			}
			if math.Abs(sp.Lat-tt.lat) > tt.latTol {
				t.Errorf("latitude = %.3f, expected %.1f ± %.1f", sp.Lat, tt.lat, tt.latTol)
			}
			if math.Abs(sp.Lon-tt.lon) > tt.lonTol {
				t.Errorf("longitude = %.3f, expected %.1f ± %.1f", sp.Lon, tt.lon, tt.lonTol)
			}
			if !sp.Valid() {
				t.Errorf("subpoint %+v should be valid", sp)
			}
		})
	}
}

func TestSubpoints(t *testing.T) {
	r := NewResolver(ephemeris.NewMeeus())
	tm := time.Date(2024, 6, 20, 15, 30, 0, 0, time.UTC)

	snap, err := r.Subpoints(tm, true)
	if err != nil {
		t.Fatalf("Subpoints() error = %v", err)
	}
	if snap.MeanSun == nil {
		t.Fatal("expected mean sun when includeMean is set")
	}

	sun, _ := r.FromBody(ephemeris.Sun, tm)
	moon, _ := r.FromBody(ephemeris.Moon, tm)
	if snap.Sun != sun || snap.Moon != moon {
		t.Errorf("Subpoints() = %+v / %+v, FromBody = %+v / %+v", snap.Sun, snap.Moon, sun, moon)
	}
	if snap.Moon.Lat < -29 || snap.Moon.Lat > 29 {
		t.Errorf("moon latitude %.2f outside ±29°", snap.Moon.Lat)
	}

	noMean, err := r.Subpoints(tm, false)
	if err != nil {
		t.Fatalf("Subpoints() error = %v", err)
	}
	if noMean.MeanSun != nil {
		t.Error("expected no mean sun when includeMean is false")
	}
}

func TestMoonIllumination(t *testing.T) {
	r := NewResolver(ephemeris.NewMeeus())

	tests := []struct {
		name     string
		time     time.Time
		min, max float64
	}{
		{"new moon Jan 2023", time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC), 0, 0.02},
		{"full moon Feb 2023", time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC), 0.98, 1},
		{"first quarter Jan 2023", time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC), 0.45, 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := r.Subpoints(tt.time, false)
			if err != nil {
				t.Fatalf("Subpoints() error = %v", err)
			}
			if snap.MoonIllumination < tt.min || snap.MoonIllumination > tt.max {
				t.Errorf("illumination = %.3f, expected in [%.2f, %.2f]", snap.MoonIllumination, tt.min, tt.max)
			}
		})
	}
}

func TestProviderErrorsPropagate(t *testing.T) {
	r := NewResolver(failingProvider{err: ephemeris.ErrOutOfRange})

	if _, err := r.FromBody(ephemeris.Moon, time.Now()); !errors.Is(err, ephemeris.ErrOutOfRange) {
		t.Errorf("FromBody() error = %v, expected ErrOutOfRange", err)
	}
	if _, err := r.Subpoints(time.Now(), true); !errors.Is(err, ephemeris.ErrOutOfRange) {
		t.Errorf("Subpoints() error = %v, expected ErrOutOfRange", err)
	}
}

func TestSubpointsMatchLocate(t *testing.T) {
	r := NewResolver(fixedProvider{vec: r3.Vec{X: 0.3, Y: -0.8, Z: 0.5}, sidereal: 17.25})
	tm := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	snap, err := r.Subpoints(tm, false)
	if err != nil {
		t.Fatalf("Subpoints() error = %v", err)
	}
	for _, body := range []ephemeris.Body{ephemeris.Sun, ephemeris.Moon} {
		fix, err := r.Locate(body, tm)
		if err != nil {
			t.Fatalf("Locate(%v) error = %v", body, err)
		}
		got := snap.Sun
		if body == ephemeris.Moon {
			got = snap.Moon
		}
		if got != fix.Subpoint {
			t.Errorf("%v: Subpoints() = %+v, Locate() = %+v", body, got, fix.Subpoint)
		}
	}
}
