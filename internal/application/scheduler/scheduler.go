package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/domain/reservation"
)

// SlotSource is satisfied by the bookings provider.
type SlotSource interface {
	GetAvailableTimeSlots(ctx context.Context, date *time.Time) []string
}

// Warmer keeps the availability cache filled for today and the following
// days so pages open with slots already known.
type Warmer struct {
	Source   SlotSource
	Days     int
	Interval time.Duration
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger

	wg sync.WaitGroup
}

// Run warms immediately and then on every tick until ctx is done.
func (w *Warmer) Run(ctx context.Context) error {
	if w.Days <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	// kick immediately
	w.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return ctx.Err()
		case <-t.C:
			w.Tick(ctx)
		}
	}
}

// Tick looks up every day in the window concurrently and waits for all of them.
func (w *Warmer) Tick(ctx context.Context) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, d := range w.Dates() {
		d := d
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			slots := w.Source.GetAvailableTimeSlots(ctx, &d)
			logger.Debug("warmed availability", zap.String("date", reservation.DateKey(d)), zap.Int("slots", len(slots)))
		}()
	}
	w.wg.Wait()
}

// Dates returns midnight of today and the next Days-1 days.
func (w *Warmer) Dates() []time.Time {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now().In(loc).Date()
	out := make([]time.Time, 0, w.Days)
	for i := 0; i < w.Days; i++ {
		out = append(out, time.Date(y, m, d+i, 0, 0, 0, 0, loc))
	}
	return out
}
