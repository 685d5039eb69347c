package simapi

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/domain/reservation"
)

const DefaultSuccessRate = 0.9

// API simulates the restaurant's reservation backend: availability comes
// from the seeded generator and submissions succeed with a fixed probability.
type API struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
	logger      *zap.Logger
}

type Option func(*API)

func WithSuccessRate(r float64) Option {
	return func(a *API) {
		if r >= 0 && r <= 1 {
			a.successRate = r
		}
	}
}

// WithRand makes submissions reproducible.
func WithRand(r *rand.Rand) Option {
	return func(a *API) {
		if r != nil {
			a.rng = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

func New(opts ...Option) *API {
	a := &API{
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		successRate: DefaultSuccessRate,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *API) FetchAvailability(ctx context.Context, date time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slots := reservation.AvailableSlots(date)
	a.logger.Debug("availability", zap.String("date", reservation.DateKey(date)), zap.Strings("slots", slots))
	return slots, nil
}

func (a *API) SubmitBooking(ctx context.Context, b reservation.Booking) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.Lock()
	ok := a.rng.Float64() < a.successRate
	a.mu.Unlock()
	a.logger.Debug("submission", zap.String("date", reservation.DateKey(b.Date)), zap.String("time", b.Time), zap.Bool("success", ok))
	return ok, nil
}
