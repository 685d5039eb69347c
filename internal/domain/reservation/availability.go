package reservation

import "time"

const (
	lcgModulus    int64 = 1<<35 - 31
	lcgMultiplier int64 = 185852
)

// Generator is a multiplicative congruential generator. It is deterministic
// for a given seed and carries no shared state, so concurrent availability
// lookups each get their own instance.
type Generator struct {
	state int64
}

func NewGenerator(seed int64) *Generator {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return &Generator{state: s}
}

// Next advances the generator and returns a value in [0, 1).
// state < 2^35 and the multiplier < 2^18, so the product fits in int64.
func (g *Generator) Next() float64 {
	g.state = g.state * lcgMultiplier % lcgModulus
	return float64(g.state) / float64(lcgModulus)
}

// AvailableSlots returns the open slot keys for date, in candidate order.
// The seed is the day of month only, so the 5th of every month shares a pattern.
func AvailableSlots(date time.Time) []string {
	g := NewGenerator(int64(date.Day()))
	out := make([]string, 0, len(CandidateSlots))
	for _, slot := range CandidateSlots {
		if g.Next() < 0.5 {
			out = append(out, slot)
		}
	}
	return out
}
