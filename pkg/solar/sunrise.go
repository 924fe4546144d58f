package solar

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SunriseSunset returns sunrise and sunset in UTC for the calendar date of
// date at (lat, lon), east positive. ok is false when the Sun does not both
// rise and set that day.
func SunriseSunset(lat, lon float64, date time.Time) (rise, set time.Time, ok bool) {
	y, m, d := date.Date()
	rise, set = sunrise.SunriseSunset(lat, lon, y, m, d)
	// polar days come back as zero times, or as garbage derived from a NaN
	// hour angle depending on the library version
	if rise.IsZero() || set.IsZero() || !set.After(rise) || set.Sub(rise) >= 24*time.Hour {
		return time.Time{}, time.Time{}, false
	}
	return rise.UTC(), set.UTC(), true
}

// FormatSunTime formats an event time in loc, or returns "" for the zero time
func FormatSunTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("3:04 PM")
}
