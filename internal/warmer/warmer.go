// Package warmer keeps the year series cache populated for the current year
// and the years just ahead of it, so the first request after midnight on
// January 1st does not pay for a full year's computation.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chrissnell/analemma/pkg/astro"
	"github.com/chrissnell/analemma/pkg/eot"
)

// Warmer precomputes year series on a cron schedule.
//
// This implements robfig/cron.Job
type Warmer struct {
	series      *eot.SeriesCache
	declination *eot.DeclinationCache
	schedule    cron.Schedule
	yearsAhead  int
	now         func() time.Time
	logger      *zap.SugaredLogger

	// ctx bounds scheduled runs; set by Start
	ctx context.Context
}

// New creates a warmer. spec is a standard five-field cron expression or a
// descriptor such as @daily, interpreted in UTC.
func New(series *eot.SeriesCache, declination *eot.DeclinationCache, spec string, yearsAhead int, logger *zap.SugaredLogger) (*Warmer, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse warm schedule: %w", err)
	}
	if yearsAhead < 0 {
		yearsAhead = 0
	}
	if yearsAhead > series.Capacity()-1 {
		yearsAhead = series.Capacity() - 1
	}
	return &Warmer{
		series:      series,
		declination: declination,
		schedule:    schedule,
		yearsAhead:  yearsAhead,
		now:         time.Now,
		logger:      logger,
		ctx:         context.Background(),
	}, nil
}

// Years returns the years a warm pass computes, in the order it computes
// them. The current year goes last so it ends up most recently used.
func (w *Warmer) Years() []int {
	current := w.now().UTC().Year()
	years := make([]int, 0, w.yearsAhead+1)
	for ahead := w.yearsAhead; ahead >= 0; ahead-- {
		years = append(years, current+ahead)
	}
	return years
}

// Warm runs one pass and returns the years now resident. It stops between
// years once ctx is cancelled.
func (w *Warmer) Warm(ctx context.Context) ([]int, error) {
	started := time.Now()
	years := w.Years()

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("warm %d: %w", year, err)
		}
		if _, err := w.series.Ensure(year, astro.YearDays(year)); err != nil {
			return nil, fmt.Errorf("warm %d: %w", year, err)
		}
	}

	current := years[len(years)-1]
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("warm declination %d: %w", current, err)
	}
	if _, err := w.declination.SunDeclinationForYear(current); err != nil {
		return nil, fmt.Errorf("warm declination %d: %w", current, err)
	}

	w.logger.Infow("series cache warmed", "years", years, "elapsed", time.Since(started))
	return w.series.Resident(), nil
}

// Run performs a warm pass, logging any failure.
//
// This implements robfig/cron.Job
func (w *Warmer) Run() {
	if _, err := w.Warm(w.ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			w.logger.Infow("cache warm interrupted by shutdown", "error", err)
			return
		}
		w.logger.Errorw("cache warm failed", "error", err)
	}
}

// Start runs a warm pass immediately and then on the schedule until ctx is
// cancelled. Passes in progress stop at the next year boundary.
func (w *Warmer) Start(ctx context.Context, wg *sync.WaitGroup) {
	w.ctx = ctx

	c := cron.New(cron.WithLocation(time.UTC))
	c.Schedule(w.schedule, w)

	w.logger.Infow("starting cache warmer", "next", w.schedule.Next(w.now().UTC()).Format(time.RFC3339))

	wg.Add(1)
	go func() {
		defer wg.Done()

		w.Run()
		if ctx.Err() == nil {
			c.Start()
		}

		<-ctx.Done()
		w.logger.Info("stopping cache warmer...")
		<-c.Stop().Done()
	}()
}
