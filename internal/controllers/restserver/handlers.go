package restserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/analemma/internal/log"
	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/eot"
	"github.com/chrissnell/analemma/pkg/kepler"
	"github.com/chrissnell/analemma/pkg/responseformat"
	"github.com/chrissnell/analemma/pkg/solar"
	"github.com/chrissnell/analemma/pkg/subpoint"
)

// maxOrbitDays bounds the /orbit sample count
const maxOrbitDays = 3660

// errBadRequest marks errors caused by the request itself
var errBadRequest = errors.New("bad request")

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// writeError maps err to a status and writes it. Input problems are 400,
// anything from the ephemeris or engine is 502.
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, errBadRequest) || errors.Is(err, ephemeris.ErrOutOfRange) ||
		errors.Is(err, ephemeris.ErrUnknownBody) || errors.Is(err, eot.ErrYearDays) {
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		requestID, _ := req.Context().Value(requestIDContextKey).(string)
		log.Errorw("request failed", "request_id", requestID, "path", req.URL.Path, "error", err)
	}

	if werr := h.formatter.WriteError(w, req, status, err); werr != nil {
		log.Error("error writing error response:", werr)
	}
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any, cacheSeconds int) {
	headers := map[string]string{"Cache-Control": "no-cache"}
	if cacheSeconds > 0 {
		headers["Cache-Control"] = fmt.Sprintf("max-age=%d", cacheSeconds)
	}
	if err := h.formatter.WriteResponse(w, req, data, headers); err != nil {
		log.Error("error encoding response:", err)
	}
}

// parseInstant reads the t query parameter, defaulting to now
func parseInstant(req *http.Request) (time.Time, error) {
	raw := req.URL.Query().Get("t")
	if raw == "" {
		return astro.Instant(time.Now()), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: t must be RFC 3339: %v", errBadRequest, err)
	}
	return astro.Instant(t), nil
}

// parseYear reads the {year} path variable, bounded by [MinYear, maxYear]
func parseYear(req *http.Request, maxYear int) (int, error) {
	year, err := strconv.Atoi(mux.Vars(req)["year"])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid year", errBadRequest)
	}
	if year < ephemeris.MinYear || year > maxYear {
		return 0, fmt.Errorf("%w: year must be between %d and %d", errBadRequest, ephemeris.MinYear, maxYear)
	}
	return year, nil
}

// parseFloat reads a float query parameter within [lo, hi]. ok is false
// when the parameter is absent.
func parseFloat(req *http.Request, name string, lo, hi float64) (v float64, ok bool, err error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	if v < lo || v > hi {
		return 0, true, fmt.Errorf("%w: %s must be between %g and %g", errBadRequest, name, lo, hi)
	}
	return v, true, nil
}

// GetSubpoints returns the Sun and Moon subpoints, and optionally the mean
// Sun's, for the instant t (default now).
// Query parameters: t (RFC 3339), mean (bool)
func (h *Handlers) GetSubpoints(w http.ResponseWriter, req *http.Request) {
	t, err := parseInstant(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	includeMean := false
	if raw := req.URL.Query().Get("mean"); raw != "" {
		includeMean, err = strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, req, fmt.Errorf("%w: mean must be a boolean", errBadRequest))
			return
		}
	}

	snap, err := h.controller.services.Resolver.Subpoints(t, includeMean)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, snap, 0)
}

// GetSubpoint returns one body's subpoint. {body} is sun, moon or meansun.
func (h *Handlers) GetSubpoint(w http.ResponseWriter, req *http.Request) {
	t, err := parseInstant(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	name := mux.Vars(req)["body"]
	resp := SubpointResponse{Body: name, Time: t}

	if name == "meansun" {
		resp.Subpoint = subpoint.MeanSun(t)
		h.write(w, req, resp, 0)
		return
	}

	body, err := ephemeris.ParseBody(name)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	resp.Subpoint, err = h.controller.services.Resolver.FromBody(body, t)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, resp, 0)
}

// GetDeclination returns the Sun's noon declination for every day of {year}
func (h *Handlers) GetDeclination(w http.ResponseWriter, req *http.Request) {
	year, err := parseYear(req, ephemeris.MaxYear)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	series, err := h.controller.services.Declination.SunDeclinationForYear(year)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, DeclinationResponse{
		Year:   year,
		Days:   series.Len(),
		Values: series.Slice(),
		Min:    series.Min(),
		Max:    series.Max(),
	}, 3600)
}

// GetSeries returns the Equation of Time decomposition for {year}
func (h *Handlers) GetSeries(w http.ResponseWriter, req *http.Request) {
	year, err := parseYear(req, eot.MaxYear)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	ys, err := h.controller.services.Series.Ensure(year, astro.YearDays(year))
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, SeriesResponse{
		Year:                ys.Year,
		YearDays:            ys.YearDays,
		Eccentricity:        ys.Eccentricity.Data(),
		Obliquity:           ys.Obliquity.Data(),
		Combined:            ys.Combined.Data(),
		OrbitSpeed:          ys.OrbitSpeed.Data(),
		ObliquityProjection: ys.ObliquityProjection.Data(),
		MaxAbs:              ys.MaxAbs,
		Gaps:                ys.Gaps,
		ComputedAt:          ys.ComputedAt,
	}, 3600)
}

// GetAnalemma returns the analemma figure for {year}
func (h *Handlers) GetAnalemma(w http.ResponseWriter, req *http.Request) {
	year, err := parseYear(req, eot.MaxYear)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	ys, err := h.controller.services.Series.Ensure(year, astro.YearDays(year))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	declination, err := h.controller.services.Declination.SunDeclinationForYear(year)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	points, err := eot.Analemma(ys, declination)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, AnalemmaResponse{Year: year, Points: points}, 3600)
}

// GetOrbit returns the synthetic Kepler orbit.
// Query parameter: days (default 365)
func (h *Handlers) GetOrbit(w http.ResponseWriter, req *http.Request) {
	days := 365
	if raw := req.URL.Query().Get("days"); raw != "" {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxOrbitDays {
			h.writeError(w, req, fmt.Errorf("%w: days must be between 1 and %d", errBadRequest, maxOrbitDays))
			return
		}
	}

	path := kepler.Path(days)
	points := make([]OrbitPoint, len(path))
	for day, st := range path {
		x, y := st.XY()
		points[day] = OrbitPoint{Day: day, X: x, Y: y, State: st}
	}

	h.write(w, req, OrbitResponse{
		Days:         days,
		Eccentricity: kepler.Eccentricity,
		Points:       points,
	}, 86400)
}

// GetDaylight returns day and night length.
// Either lat and dec (with optional alt, default the apparent horizon), or
// lat and lon with an optional date (YYYY-MM-DD, default today), in which
// case the declination comes from the ephemeris and sunrise and sunset are
// included.
func (h *Handlers) GetDaylight(w http.ResponseWriter, req *http.Request) {
	lat, ok, err := parseFloat(req, "lat", -90, 90)
	if err == nil && !ok {
		err = fmt.Errorf("%w: lat is required", errBadRequest)
	}
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	alt, ok, err := parseFloat(req, "alt", -90, 90)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	if !ok {
		alt = solar.ApparentHorizon
	}

	resp := DaylightResponse{Latitude: lat, AltitudeDeg: alt}

	dec, haveDec, err := parseFloat(req, "dec", -90, 90)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	if !haveDec {
		lon, haveLon, err := parseFloat(req, "lon", -180, 180)
		if err == nil && !haveLon {
			err = fmt.Errorf("%w: either dec or lon is required", errBadRequest)
		}
		if err != nil {
			h.writeError(w, req, err)
			return
		}

		date := time.Now().UTC()
		if raw := req.URL.Query().Get("date"); raw != "" {
			date, err = time.Parse(time.DateOnly, raw)
			if err != nil {
				h.writeError(w, req, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest))
				return
			}
		}
		noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)

		sun, err := h.controller.services.Resolver.FromBody(ephemeris.Sun, noon)
		if err != nil {
			h.writeError(w, req, err)
			return
		}
		dec = sun.Lat

		eotMinutes := solar.EquationOfTime(noon)
		resp.Longitude = &lon
		resp.Date = noon.Format(time.DateOnly)
		resp.EoTMinutes = &eotMinutes
		if rise, set, ok := solar.SunriseSunset(lat, lon, noon); ok {
			resp.Sunrise = &rise
			resp.Sunset = &set
		}
	}

	daylight := solar.DaylightHoursAtAltitude(lat, dec, alt)
	resp.DeclinationDeg = dec
	resp.DayHours = daylight.Day
	resp.NightHours = daylight.Night

	h.write(w, req, resp, 0)
}

// GetStatus reports the backend and cache state
func (h *Handlers) GetStatus(w http.ResponseWriter, req *http.Request) {
	svc := h.controller.services
	h.write(w, req, StatusResponse{
		Backend:          svc.Backend,
		CacheCapacity:    svc.Series.Capacity(),
		ResidentYears:    svc.Series.Resident(),
		CacheStats:       svc.Series.Stats(),
		RequestsRecorded: len(log.GetHTTPLogBuffer().Entries()),
	}, 0)
}

// GetRequests returns the recent request log, oldest first
func (h *Handlers) GetRequests(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, log.GetHTTPLogBuffer().Entries(), 0)
}
