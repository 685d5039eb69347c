package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/little-lemon/internal/domain/reservation"
)

var (
	ErrNoSlots  = errors.New("no matching time slots")
	ErrRejected = errors.New("booking could not be confirmed")
)

// Booker is the part of the bookings provider this use case drives.
type Booker interface {
	GetAvailableTimeSlots(ctx context.Context, date *time.Time) []string
	AddBooking(ctx context.Context, b reservation.Booking) bool
}

type FindAndBook struct {
	Provider Booker
	Schema   reservation.Schema
	Now      func() time.Time
}

// Request is a booking whose time may be left empty. Preferred lists slot
// keys to try in order when Booking.Time is empty; with neither, the
// earliest open slot is taken.
type Request struct {
	Booking   reservation.Booking
	Preferred []string
}

// Execute looks up the date's open slots, picks one, validates the result
// and submits it. It returns the booking as stored, ID included.
func (u FindAndBook) Execute(ctx context.Context, req Request) (reservation.Booking, error) {
	if u.Provider == nil {
		return reservation.Booking{}, fmt.Errorf("provider is nil")
	}
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}

	b := req.Booking
	date := b.Date
	slots := u.Provider.GetAvailableTimeSlots(ctx, &date)

	preferred := req.Preferred
	if b.Time != "" {
		preferred = []string{b.Time}
	}
	slot, ok := reservation.ChooseSlot(preferred, slots)
	if !ok {
		return reservation.Booking{}, fmt.Errorf("%s: %w", reservation.DateKey(date), ErrNoSlots)
	}
	if b.Time, ok = normalize(slot); !ok {
		return reservation.Booking{}, fmt.Errorf("%q: %w", slot, reservation.ErrInvalidSlot)
	}

	if err := u.Schema.Validate(b, now()); err != nil {
		return reservation.Booking{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if !u.Provider.AddBooking(ctx, b) {
		return reservation.Booking{}, ErrRejected
	}
	return b, nil
}

func normalize(slot string) (string, bool) {
	k, err := reservation.NormalizeSlotKey(slot)
	return k, err == nil
}
