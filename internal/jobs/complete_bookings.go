// Package jobs holds scheduled background work driven by cron.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/venue-booking/internal/booking"
)

// StartCompletionSweeper schedules the elapsed-booking sweep on the given
// cron spec and starts the scheduler.  Each run moves pending/confirmed
// bookings whose interval has fully passed into the completed state.  The
// returned cron can be stopped on shutdown.
func StartCompletionSweeper(eng *booking.Engine, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := eng.CompleteElapsed(ctx, time.Now())
		if err != nil {
			log.Printf("completion-sweep: %v", err)
			return
		}
		if n > 0 {
			log.Printf("completion-sweep: marked %d bookings completed", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
