package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/solar"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

func main() {
	var timeStr, backend string
	var mean bool
	flag.StringVar(&timeStr, "time", "", "UTC time to place the bodies at (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	flag.StringVar(&backend, "backend", ephemeris.BackendMeeus, "Ephemeris backend: meeus or analytic")
	flag.BoolVar(&mean, "mean", false, "Also show the mean Sun")
	flag.Parse()

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}
	t = astro.Instant(t)

	provider, err := ephemeris.New(backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	snap, err := subpoint.NewResolver(provider).Subpoints(t, mean)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving subpoints: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Subpoints for %s (%s)\n", t.Format(time.RFC3339), backend)
	fmt.Printf("  Sun:          %s\n", formatSubpoint(snap.Sun))
	fmt.Printf("  Moon:         %s\n", formatSubpoint(snap.Moon))
	if snap.MeanSun != nil {
		fmt.Printf("  Mean Sun:     %s\n", formatSubpoint(*snap.MeanSun))
	}
	fmt.Printf("  Illumination: %.1f%%\n", snap.MoonIllumination*100)
	fmt.Printf("  EoT:          %+.2f min\n", solar.EquationOfTime(t))
}

func formatSubpoint(s subpoint.Subpoint) string {
	ns, ew := "N", "E"
	lat, lon := s.Lat, s.Lon
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%7.3f°%s %8.3f°%s", lat, ns, lon, ew)
}
