package astro

import "time"

const (
	// SiderealDay is one rotation of the Earth relative to the stars
	// (23h 56m 4.091s), rounded to the millisecond.
	SiderealDay = 86164091 * time.Millisecond

	// MillisPerDay is the length of a mean solar day in milliseconds
	MillisPerDay = 86400000
)

// Instant returns t in UTC, truncated to millisecond resolution.
func Instant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// IsLeapYear reports whether year is a leap year under the Gregorian rule
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// YearDays returns the number of calendar days in year (365 or 366)
func YearDays(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DayNoon returns the UTC noon instant of the zero-based day of year.
// Days outside [0, YearDays(year)) roll into the neighbouring years the way
// time.Date normalizes them.
func DayNoon(year, day int) time.Time {
	return time.Date(year, time.January, 1+day, 12, 0, 0, 0, time.UTC)
}

// DayIndex returns the zero-based day of year of t in UTC
func DayIndex(t time.Time) int {
	return t.UTC().YearDay() - 1
}

// UTCDayFraction returns the fraction of the UTC day elapsed at t, in [0, 1)
func UTCDayFraction(t time.Time) float64 {
	u := Instant(t)
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return float64(u.Sub(midnight).Milliseconds()) / MillisPerDay
}
