package reservation

import (
	"fmt"
	"strings"
)

// To12Hour renders a 24h slot key as "h:mm AM/PM" for display.
// Input that already carries an AM/PM marker is returned unchanged, and
// input that is not a slot key is returned as is.
func To12Hour(slot string) string {
	upper := strings.ToUpper(slot)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") {
		return slot
	}
	h, m, err := ParseSlotKey(slot)
	if err != nil {
		return slot
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}
