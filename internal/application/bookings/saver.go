package bookings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/domain/reservation"
)

// saver writes bookings snapshots off the dispatch path, one write at a time.
// Snapshots offered while a write is in flight coalesce: only the newest is
// written next.
type saver struct {
	persist Persister
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	written *sync.Cond
	pending []reservation.Booking
	pendRev uint64
	hasPend bool
	running bool
	offered uint64
	saved   uint64
}

func newSaver(persist Persister, logger *zap.Logger, timeout time.Duration) *saver {
	s := &saver{persist: persist, logger: logger, timeout: timeout}
	s.written = sync.NewCond(&s.mu)
	return s
}

// offer queues list as the snapshot for rev. list must not be mutated
// afterwards.
func (s *saver) offer(rev uint64, list []reservation.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev <= s.offered {
		return
	}
	s.pending, s.pendRev, s.hasPend = list, rev, true
	s.offered = rev
	if !s.running {
		s.running = true
		go s.drain()
	}
}

func (s *saver) drain() {
	s.mu.Lock()
	for s.hasPend {
		list, rev := s.pending, s.pendRev
		s.pending, s.hasPend = nil, false
		s.mu.Unlock()

		s.write(rev, list)

		s.mu.Lock()
		s.saved = rev
		s.written.Broadcast()
	}
	s.running = false
	s.mu.Unlock()
}

func (s *saver) write(rev uint64, list []reservation.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.persist.SaveBookings(ctx, list); err != nil {
		s.logger.Error("save bookings", zap.Uint64("rev", rev), zap.Error(err))
	}
}

// wait blocks until rev or a later snapshot has been written. A rev that was
// never offered returns at once.
func (s *saver) wait(rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.saved < rev && s.offered >= rev {
		s.written.Wait()
	}
}

// flush blocks until everything offered so far has been written.
func (s *saver) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.saved < s.offered {
		s.written.Wait()
	}
}
