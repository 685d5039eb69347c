package reservation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSlot = errors.New("invalid slot key")

// CandidateSlots is the fixed evening menu, 17:00 through 22:00 every 30 minutes.
// Generation order and output order both follow this list.
var CandidateSlots = []string{
	"17:00", "17:30", "18:00", "18:30", "19:00", "19:30",
	"20:00", "20:30", "21:00", "21:30", "22:00",
}

const dateKeyLayout = "2006-01-02"

// DateKey is the ISO calendar date of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses "YYYY-MM-DD" into midnight of that day in loc.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(dateKeyLayout, strings.TrimSpace(s), loc)
}

// ParseSlotKey splits a 24h "HH:MM" key. A trailing ":SS" is tolerated.
func ParseSlotKey(key string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(key), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, key)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, key)
	}
	if len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, key)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, key)
	}
	return hour, minute, nil
}

// NormalizeSlotKey returns the canonical zero-padded "HH:MM" form.
func NormalizeSlotKey(key string) (string, error) {
	h, m, err := ParseSlotKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

func IsCandidate(key string) bool {
	for _, c := range CandidateSlots {
		if c == key {
			return true
		}
	}
	return false
}
