package eot

import (
	"fmt"
	"time"

	"github.com/chrissnell/analemma/pkg/astro"
)

// AnalemmaPoint is one day of the analemma figure: the Sun's noon
// declination against how far it runs ahead of or behind the clock.
type AnalemmaPoint struct {
	Day            int       `json:"day" msgpack:"day"`
	Date           time.Time `json:"date" msgpack:"date"`
	EoTSeconds     float64   `json:"eotSeconds" msgpack:"eotSeconds"`
	DeclinationDeg float64   `json:"declinationDeg" msgpack:"declinationDeg"`
}

// Analemma pairs the combined Equation of Time series with the declination
// table of the same year.
func Analemma(ys *YearSeries, declination *Series) ([]AnalemmaPoint, error) {
	if declination.Len() != ys.YearDays {
		return nil, fmt.Errorf("declination table has %d days, series has %d", declination.Len(), ys.YearDays)
	}

	points := make([]AnalemmaPoint, 0, ys.YearDays)
	for day, eot := range ys.Combined.Values() {
		points = append(points, AnalemmaPoint{
			Day:            day,
			Date:           astro.DayNoon(ys.Year, day),
			EoTSeconds:     eot,
			DeclinationDeg: declination.At(day),
		})
	}
	return points, nil
}
