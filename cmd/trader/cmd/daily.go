package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/notify"
)

// dayCloser closes a trading day: it drains the engine queue, sends the
// daily summary, then resets the daily PnL.
type dayCloser struct {
	*engine.Engine
	alerter *notify.Alerter
	log     zerolog.Logger
}

func (d *dayCloser) Rollover(ctx context.Context) error {
	if err := d.Flush(ctx); err != nil {
		return err
	}
	if err := d.alerter.DailySummary(ctx, d.Risk().Snapshot()); err != nil {
		d.log.Warn().Err(err).Msg("daily summary not delivered")
	}
	return d.Engine.Rollover(ctx)
}

// runDaily rolls the day over at every UTC midnight until ctx is done.
// now defaults to time.Now.
func (d *dayCloser) runDaily(ctx context.Context, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	for {
		timer := time.NewTimer(untilNextDay(now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			if err := d.Rollover(ctx); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}

// untilNextDay is the time left until the next UTC midnight, never zero.
func untilNextDay(now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(now)
}
