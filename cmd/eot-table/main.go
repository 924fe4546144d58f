package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chrissnell/analemma/internal/log"
	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/eot"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

func main() {
	var year int
	var backend string
	var debug bool
	flag.IntVar(&year, "year", time.Now().UTC().Year(), "Year to decompose")
	flag.StringVar(&backend, "backend", ephemeris.BackendMeeus, "Ephemeris backend: meeus or analytic")
	flag.BoolVar(&debug, "debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider, err := ephemeris.New(backend)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	resolver := subpoint.NewResolver(provider)
	engine := eot.NewEngine(resolver, eot.WithLogger(log.GetSugaredLogger()))

	ys, err := engine.Compute(year, astro.YearDays(year))
	if err != nil {
		log.Fatalf("Error computing %d: %v", year, err)
	}
	declination, err := eot.NewDeclinationCache(resolver).SunDeclinationForYear(year)
	if err != nil {
		log.Fatalf("Error computing declination for %d: %v", year, err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "day\tdate\teccentricity s\tobliquity s\tcombined s\tdeclination °\t")
	for day := 0; day < ys.YearDays; day++ {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.2f\t\n",
			day,
			astro.DayNoon(year, day).Format("Jan 02"),
			ys.Eccentricity.At(day),
			ys.Obliquity.At(day),
			ys.Combined.At(day),
			declination.At(day),
		)
	}
	tw.Flush()

	fmt.Printf("\ncombined: min %.1f s, max %.1f s; max magnitude across series %.1f s\n",
		ys.Combined.Min(), ys.Combined.Max(), ys.MaxAbs)
	if ys.HasGaps() {
		fmt.Printf("days with missing ephemeris data: %v\n", ys.Gaps)
	}
}
