package solar

import (
	"time"

	"github.com/soniakeys/meeus/v3/eqtime"
	"github.com/soniakeys/meeus/v3/julian"
)

// EquationOfTime returns apparent minus mean solar time in minutes at t,
// from Smart's (1956) series. Positive values mean a sundial runs ahead of
// the clock. It is good to a few seconds and serves as an independent check
// on the accumulated series.
func EquationOfTime(t time.Time) float64 {
	return eqtime.ESmart(julian.TimeToJD(t.UTC())).Min()
}
