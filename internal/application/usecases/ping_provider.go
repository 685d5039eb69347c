package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/little-lemon/internal/domain/reservation"
)

// PingProvider checks that the reservation API answers an availability
// lookup for today.
type PingProvider struct {
	Provider reservation.API
	Now      func() time.Time
}

func (u PingProvider) Execute(ctx context.Context) ([]string, error) {
	if u.Provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	slots, err := u.Provider.FetchAvailability(ctx, now())
	if err != nil {
		return nil, fmt.Errorf("reservation api: %w", err)
	}
	return slots, nil
}
