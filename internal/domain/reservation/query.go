package reservation

import (
	"sort"
	"strings"
)

type SortField string

const (
	SortByDate     SortField = "date"
	SortByName     SortField = "name"
	SortByGuests   SortField = "guests"
	SortByOccasion SortField = "occasion"
)

// Query filters and orders a bookings list for display.
// Empty filters match everything.
type Query struct {
	Name       string // case-insensitive substring
	DateKey    string // "YYYY-MM-DD"
	Occasion   string
	SortBy     SortField
	Descending bool
}

// Indexed pairs a booking with its position in the store, which is what
// edit and release address.
type Indexed struct {
	Index   int     `json:"index"`
	Booking Booking `json:"booking"`
}

func (q Query) Apply(bookings []Booking) []Indexed {
	name := strings.ToLower(strings.TrimSpace(q.Name))
	out := make([]Indexed, 0, len(bookings))
	for i, b := range bookings {
		if name != "" && !strings.Contains(strings.ToLower(b.Name), name) {
			continue
		}
		if q.DateKey != "" && DateKey(b.Date) != q.DateKey {
			continue
		}
		if q.Occasion != "" && b.Occasion != q.Occasion {
			continue
		}
		out = append(out, Indexed{Index: i, Booking: b})
	}

	by := q.SortBy
	if by == "" {
		by = SortByDate
	}
	less := func(a, b Booking) bool {
		switch by {
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByGuests:
			return a.Guests < b.Guests
		case SortByOccasion:
			return a.Occasion < b.Occasion
		default:
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			return a.Time < b.Time
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Descending {
			return less(out[j].Booking, out[i].Booking)
		}
		return less(out[i].Booking, out[j].Booking)
	})
	return out
}
