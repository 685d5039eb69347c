package reservation

import (
	"context"
	"time"
)

// API is the reservation backend the bookings provider talks to.
// The simulated browser API implements it; so could a real network client.
type API interface {
	// FetchAvailability returns the open slot keys for date. Repeated calls
	// for the same date return the same slots.
	FetchAvailability(ctx context.Context, date time.Time) ([]string, error)
	// SubmitBooking reports whether the backend accepted the booking.
	// There is no failure reason beyond the error.
	SubmitBooking(ctx context.Context, b Booking) (bool, error)
}
