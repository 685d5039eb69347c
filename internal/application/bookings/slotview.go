package bookings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/domain/reservation"
)

// SlotView is one consumer's view of availability, such as a booking form
// whose date picker changes faster than lookups return. Only the answer to
// the most recent Select is applied; older in-flight answers and anything
// arriving after Close are dropped.
type SlotView struct {
	p *Provider

	mu      sync.Mutex
	seq     uint64
	closed  bool
	dateKey string
	slots   []string
	loading bool
}

func (p *Provider) NewSlotView() *SlotView {
	return &SlotView{p: p, slots: []string{}}
}

// Select looks up date and returns its slots. applied is false when a later
// Select or Close superseded this call, in which case neither the view nor
// the store was updated.
func (v *SlotView) Select(ctx context.Context, date time.Time) (slots []string, applied bool) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, false
	}
	v.seq++
	mine := v.seq
	v.dateKey = reservation.DateKey(date)
	v.loading = true
	v.mu.Unlock()

	got, err := v.p.fetch(ctx, date)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || mine != v.seq {
		v.p.logger.Debug("discarding stale availability", zap.String("date", reservation.DateKey(date)))
		return nil, false
	}
	v.loading = false
	if err != nil {
		v.p.logger.Warn("fetch available times", zap.String("date", v.dateKey), zap.Error(err))
		v.slots = []string{}
		return []string{}, true
	}
	v.p.store.Dispatch(UpdateSlots{Date: date, AvailableTimes: got})
	v.slots = append([]string(nil), got...)
	return got, true
}

// Current returns the date and slots last applied and whether a lookup is pending.
func (v *SlotView) Current() (dateKey string, slots []string, loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dateKey, append([]string(nil), v.slots...), v.loading
}

// Close stops the view from applying any further results.
func (v *SlotView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.loading = false
}
