package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/little-lemon/internal/domain/reservation"
)

func TestSlotView_LatestSelectWins(t *testing.T) {
	api := newFakeAPI()
	slow := tomorrow()
	fast := slow.AddDate(0, 0, 1)
	api.slots[reservation.DateKey(slow)] = []string{"17:00"}
	api.slots[reservation.DateKey(fast)] = []string{"21:00"}
	gate := make(chan struct{})
	api.gates[reservation.DateKey(slow)] = gate

	p := newTestProvider(t, api, nil)
	v := p.NewSlotView()

	type result struct {
		slots   []string
		applied bool
	}
	first := make(chan result, 1)
	go func() {
		s, ok := v.Select(context.Background(), slow)
		first <- result{s, ok}
	}()
	require.Eventually(t, func() bool {
		k, _, loading := v.Current()
		return loading && k == reservation.DateKey(slow)
	}, time.Second, time.Millisecond)

	got, applied := v.Select(context.Background(), fast)
	require.True(t, applied)
	require.Equal(t, []string{"21:00"}, got)

	close(gate)
	r := <-first
	require.False(t, r.applied)
	require.Nil(t, r.slots)

	key, slots, loading := v.Current()
	require.Equal(t, reservation.DateKey(fast), key)
	require.Equal(t, []string{"21:00"}, slots)
	require.False(t, loading)

	_, ok := p.CachedSlots(slow)
	require.False(t, ok, "superseded answer must not reach the store")
}

func TestSlotView_Close(t *testing.T) {
	api := newFakeAPI()
	d := tomorrow()
	gate := make(chan struct{})
	api.gates[reservation.DateKey(d)] = gate

	p := newTestProvider(t, api, nil)
	v := p.NewSlotView()

	done := make(chan bool, 1)
	go func() {
		_, ok := v.Select(context.Background(), d)
		done <- ok
	}()
	require.Eventually(t, func() bool {
		_, _, loading := v.Current()
		return loading
	}, time.Second, time.Millisecond)

	v.Close()
	close(gate)
	require.False(t, <-done)
	_, ok := p.CachedSlots(d)
	require.False(t, ok)

	s, ok := v.Select(context.Background(), d)
	require.False(t, ok)
	require.Nil(t, s)
}

func TestSlotView_FetchError(t *testing.T) {
	api := newFakeAPI()
	api.fetchErr = context.DeadlineExceeded
	p := newTestProvider(t, api, nil)
	v := p.NewSlotView()

	s, ok := v.Select(context.Background(), tomorrow())
	require.True(t, ok)
	require.NotNil(t, s)
	require.Empty(t, s)
}
