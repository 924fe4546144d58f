package restserver

import (
	"time"

	"github.com/chrissnell/analemma/pkg/eot"
	"github.com/chrissnell/analemma/pkg/kepler"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

// SubpointResponse is a single body's subpoint at an instant
type SubpointResponse struct {
	Body     string            `json:"body"`
	Time     time.Time         `json:"time"`
	Subpoint subpoint.Subpoint `json:"subpoint"`
}

// DeclinationResponse is the Sun's noon declination for each day of a year
type DeclinationResponse struct {
	Year   int       `json:"year"`
	Days   int       `json:"days"`
	Values []float64 `json:"values"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
}

// SeriesResponse is the decomposition for one year, values in seconds
type SeriesResponse struct {
	Year                int            `json:"year"`
	YearDays            int            `json:"yearDays"`
	Eccentricity        eot.SeriesData `json:"eccentricity"`
	Obliquity           eot.SeriesData `json:"obliquity"`
	Combined            eot.SeriesData `json:"combined"`
	OrbitSpeed          eot.SeriesData `json:"orbitSpeed"`
	ObliquityProjection eot.SeriesData `json:"obliquityProjection"`
	MaxAbs              float64        `json:"maxAbs"`
	Gaps                []int          `json:"gaps,omitempty"`
	ComputedAt          time.Time      `json:"computedAt"`
}

// AnalemmaResponse is the analemma figure for a year
type AnalemmaResponse struct {
	Year   int                 `json:"year"`
	Points []eot.AnalemmaPoint `json:"points"`
}

// OrbitPoint is one day on the synthetic orbit, perihelion on +x
type OrbitPoint struct {
	Day int     `json:"day"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	kepler.State
}

// OrbitResponse is the synthetic Kepler orbit sampled once per day
type OrbitResponse struct {
	Days         int          `json:"days"`
	Eccentricity float64      `json:"eccentricity"`
	Points       []OrbitPoint `json:"points"`
}

// DaylightResponse reports day length for a latitude and solar declination.
// Sunrise and Sunset are only present for location queries with a normal
// rise and set.
type DaylightResponse struct {
	Latitude       float64    `json:"latitude"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Date           string     `json:"date,omitempty"`
	DeclinationDeg float64    `json:"declinationDeg"`
	AltitudeDeg    float64    `json:"altitudeDeg"`
	DayHours       float64    `json:"dayHours"`
	NightHours     float64    `json:"nightHours"`
	EoTMinutes     *float64   `json:"eotMinutes,omitempty"`
	Sunrise        *time.Time `json:"sunrise,omitempty"`
	Sunset         *time.Time `json:"sunset,omitempty"`
}

// StatusResponse summarizes the engine's cache state
type StatusResponse struct {
	Backend          string         `json:"backend"`
	CacheCapacity    int            `json:"cacheCapacity"`
	ResidentYears    []int          `json:"residentYears"`
	CacheStats       eot.CacheStats `json:"cacheStats"`
	RequestsRecorded int            `json:"requestsRecorded"`
}
