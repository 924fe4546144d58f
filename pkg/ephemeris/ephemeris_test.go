package ephemeris

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func declinationDeg(v r3.Vec) float64 {
	return math.Atan2(v.Z, math.Hypot(v.X, v.Y)) * 180 / math.Pi
}

func providers() map[string]Provider {
	return map[string]Provider{
		BackendMeeus:    NewMeeus(),
		BackendAnalytic: NewAnalytic(),
	}
}

func TestSunDeclination(t *testing.T) {
	tests := []struct {
		name      string
		time      time.Time
		expected  float64
		tolerance float64
	}{
		{
			// March equinox 2024: 03:06 UTC
			name:      "March equinox 2024",
			time:      time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC),
			expected:  0,
			tolerance: 0.05,
		},
		{
			// June solstice 2024: 20:51 UTC
			name:      "June solstice 2024",
			time:      time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC),
			expected:  23.44,
			tolerance: 0.05,
		},
		{
			// December solstice 2023: 03:27 UTC
			name:      "December solstice 2023",
			time:      time.Date(2023, 12, 22, 3, 27, 0, 0, time.UTC),
			expected:  -23.44,
			tolerance: 0.05,
		},
	}

	for name, p := range providers() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				v, err := p.GeocentricVector(Sun, tt.time)
				if err != nil {
					t.Fatalf("GeocentricVector() error = %v", err)
				}
				dec := declinationDeg(v)
				if math.Abs(dec-tt.expected) > tt.tolerance {
					t.Errorf("declination = %.4f, expected %.2f ± %.2f", dec, tt.expected, tt.tolerance)
				}
			})
		}
	}
}

func TestSunDistanceAtPerihelion(t *testing.T) {
	// Perihelion 2024: Jan 3 00:39 UTC, 0.983307 AU
	perihelion := time.Date(2024, 1, 3, 0, 39, 0, 0, time.UTC)
	for name, p := range providers() {
		v, err := p.GeocentricVector(Sun, perihelion)
		if err != nil {
			t.Fatalf("%s: GeocentricVector() error = %v", name, err)
		}
		if d := r3.Norm(v); math.Abs(d-0.98331) > 0.001 {
			t.Errorf("%s: sun distance = %.5f AU, expected ~0.98331", name, d)
		}
	}
}

func TestMoonProvidersAgree(t *testing.T) {
	meeus := NewMeeus()
	analytic := NewAnalytic()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 30; day++ {
		tm := start.Add(time.Duration(day) * 24 * time.Hour)

		a, err := meeus.GeocentricVector(Moon, tm)
		if err != nil {
			t.Fatalf("meeus error = %v", err)
		}
		b, err := analytic.GeocentricVector(Moon, tm)
		if err != nil {
			t.Fatalf("analytic error = %v", err)
		}

		sep := math.Acos(math.Min(1, r3.Cos(a, b))) * 180 / math.Pi
		if sep > 1.0 {
			t.Errorf("day %d: moon directions differ by %.3f°", day, sep)
		}

		distKm := r3.Norm(a) * KmPerAU
		if distKm < 356000 || distKm > 407000 {
			t.Errorf("day %d: moon distance %.0f km outside perigee/apogee bounds", day, distKm)
		}
	}
}

func TestSiderealTime(t *testing.T) {
	// GMST at J2000.0 is 18.697374558 h
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	for name, p := range providers() {
		st, err := p.SiderealTime(j2000)
		if err != nil {
			t.Fatalf("%s: SiderealTime() error = %v", name, err)
		}
		if math.Abs(st-18.697374558) > 0.002 {
			t.Errorf("%s: sidereal time = %.6f h, expected 18.697375", name, st)
		}
	}
}

func TestErrors(t *testing.T) {
	for name, p := range providers() {
		t.Run(name, func(t *testing.T) {
			_, err := p.GeocentricVector(Body(99), time.Now())
			if !errors.Is(err, ErrUnknownBody) {
				t.Errorf("unknown body error = %v, expected ErrUnknownBody", err)
			}

			far := time.Date(MaxYear+1, 1, 1, 0, 0, 0, 0, time.UTC)
			if _, err := p.GeocentricVector(Sun, far); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("out of range vector error = %v, expected ErrOutOfRange", err)
			}
			if _, err := p.SiderealTime(far); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("out of range sidereal error = %v, expected ErrOutOfRange", err)
			}
		})
	}
}

func TestNewAndParseBody(t *testing.T) {
	if _, err := New("meeus"); err != nil {
		t.Errorf("New(meeus) error = %v", err)
	}
	if p, err := New(""); err != nil || p == nil {
		t.Errorf("New(\"\") = %v, %v; expected default provider", p, err)
	}
	if _, err := New("jpl"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(jpl) error = %v, expected ErrUnknownBackend", err)
	}

	b, err := ParseBody("Moon")
	if err != nil || b != Moon {
		t.Errorf("ParseBody(Moon) = %v, %v", b, err)
	}
	if _, err := ParseBody("mars"); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("ParseBody(mars) error = %v, expected ErrUnknownBody", err)
	}
	if Sun.String() != "sun" {
		t.Errorf("Sun.String() = %q", Sun.String())
	}
}
