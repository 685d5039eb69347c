package reservation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

type Requirement int

const (
	Required Requirement = iota
	Optional
)

// Schema decides which of the variable fields must be filled in.
// The store accepts whatever passes the schema the caller picked.
type Schema struct {
	Occasion Requirement
	Seating  Requirement
}

var DefaultSchema = Schema{Occasion: Required, Seating: Required}

// ValidationError maps a field name to a human readable message.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "invalid booking: " + strings.Join(parts, "; ")
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Validate checks b against DefaultSchema.
func Validate(b Booking, now time.Time) error {
	return DefaultSchema.Validate(b, now)
}

// Validate returns a ValidationError listing every failing field, or nil.
// The reservation must start after now.
func (s Schema) Validate(b Booking, now time.Time) error {
	errs := ValidationError{}

	name := strings.TrimSpace(b.Name)
	switch n := utf8.RuneCountInString(name); {
	case n < 2:
		errs["name"] = "Name must be at least 2 characters"
	case n > 50:
		errs["name"] = "Name must be less than 50 characters"
	}
	if !emailRe.MatchString(strings.TrimSpace(b.Email)) {
		errs["email"] = "Invalid email address"
	}
	if !phoneRe.MatchString(strings.TrimSpace(b.Phone)) {
		errs["phone"] = "Phone number must be 10 digits"
	}

	if b.Date.IsZero() {
		errs["date"] = "Please select a date"
	} else {
		y, m, d := now.In(b.Date.Location()).Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, b.Date.Location())
		if b.Date.Before(today) {
			errs["date"] = "Date cannot be in the past"
		}
	}

	if strings.TrimSpace(b.Time) == "" {
		errs["time"] = "Please select a time"
	} else if _, _, err := ParseSlotKey(b.Time); err != nil {
		errs["time"] = "Invalid time"
	} else if _, dateBad := errs["date"]; !dateBad {
		if at, _ := b.At(); !at.After(now) {
			errs["time"] = "Reservation must be in the future"
		}
	}

	switch {
	case b.Guests < MinGuests:
		errs["guests"] = "Minimum 1 guest required"
	case b.Guests > MaxGuests:
		errs["guests"] = "Maximum 10 guests allowed"
	}

	if msg := checkChoice(b.Occasion, Occasions, s.Occasion, "Please select an occasion"); msg != "" {
		errs["occasion"] = msg
	}
	if msg := checkChoice(b.Seating, SeatingOptions, s.Seating, "Please select a seating preference"); msg != "" {
		errs["seating"] = msg
	}
	if utf8.RuneCountInString(b.SpecialRequests) > MaxSpecialRequestsLen {
		errs["specialRequests"] = "Special requests must be less than 500 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkChoice(v string, allowed []string, req Requirement, missing string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		if req == Required {
			return missing
		}
		return ""
	}
	for _, a := range allowed {
		if a == v {
			return ""
		}
	}
	return fmt.Sprintf("Unknown option %q", v)
}
