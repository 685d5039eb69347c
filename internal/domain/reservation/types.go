package reservation

import "time"

// Booking is one table reservation. Identity inside the store is its list
// position; ID is an optional client-assigned tag.
type Booking struct {
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time"` // slot key, "HH:MM" 24h
	Guests          int       `json:"guests"`
	Occasion        string    `json:"occasion"`
	Seating         string    `json:"seating"`
	SpecialRequests string    `json:"specialRequests"`
}

// At returns the moment the reservation starts, in the location of Date.
// ok is false when Time is not a valid slot key.
func (b Booking) At() (time.Time, bool) {
	h, m, err := ParseSlotKey(b.Time)
	if err != nil {
		return time.Time{}, false
	}
	y, mo, d := b.Date.Date()
	return time.Date(y, mo, d, h, m, 0, 0, b.Date.Location()), true
}

var Occasions = []string{
	"Birthday",
	"Anniversary",
	"Date Night",
	"Business Meal",
	"Family Gathering",
	"Other",
}

var SeatingOptions = []string{
	"Indoor",
	"Outdoor",
	"Bar",
	"No Preference",
}

const (
	MinGuests             = 1
	MaxGuests             = 10
	MaxSpecialRequestsLen = 500
)
