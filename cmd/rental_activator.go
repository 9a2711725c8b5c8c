package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const rentalActivatorTimeout = 1 * time.Minute

// startRentalActivator schedules the confirmed to active sweep. Runs never
// overlap; a run still in progress makes the next tick a no-op.
func (app *application) startRentalActivator(ctx context.Context, schedule string) (*cron.Cron, error) {
	logger := cron.PrintfLogger(app.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(schedule, func() { app.activateDueRentals(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule rental activation %q: %w", schedule, err)
	}
	c.Start()
	app.log.WithField("schedule", schedule).Info("rental activator started")
	return c, nil
}

func (app *application) activateDueRentals(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, rentalActivatorTimeout)
	defer cancel()

	activated, err := app.rentalService.ActivateDue(runCtx)
	if err != nil {
		app.log.WithError(err).WithField("activated", activated).Error("rental activator: sweep failed")
		return
	}
	if activated > 0 {
		app.log.WithField("activated", activated).Info("rental activator: rentals started")
	}
}
