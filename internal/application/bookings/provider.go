package bookings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/domain/reservation"
	"github.com/example/little-lemon/internal/internaltypes"
)

const (
	msgLoadFailed  = "Failed to load saved bookings"
	msgUnavailable = "Booking system temporarily unavailable"

	defaultCallTimeout = 2 * time.Second
	defaultSaveTimeout = 5 * time.Second
)

type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseDegradedReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseDegradedReady:
		return "degraded"
	default:
		return "uninitialized"
	}
}

// Persister mirrors the bookings list to durable storage.
// LoadBookings reports ok=false when nothing was stored; an error means the
// stored data could not be read.
type Persister interface {
	LoadBookings(ctx context.Context) (bookings []reservation.Booking, ok bool, err error)
	SaveBookings(ctx context.Context, bookings []reservation.Booking) error
}

// Recorder receives outcome counts. A nil Recorder is ignored.
type Recorder interface {
	ObserveAvailability(outcome string)
	ObserveSubmission(outcome string)
	SetBookings(n int)
}

// Provider owns the store, talks to the reservation API and storage, and is
// the only thing that dispatches actions.
type Provider struct {
	api     reservation.API
	persist Persister
	store   *Store
	saves   *saver

	logger      *zap.Logger
	metrics     Recorder
	now         func() time.Time
	loc         *time.Location
	callTimeout time.Duration
	newID       func() string

	phase  atomic.Int32
	loaded atomic.Bool

	startOnce sync.Once
}

type Option func(*Provider)

func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(p *Provider) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(p *Provider) { p.metrics = r }
}

func WithIDGenerator(f func() string) Option {
	return func(p *Provider) {
		if f != nil {
			p.newID = f
		}
	}
}

// NewProvider builds a provider in PhaseUninitialized. persist may be nil,
// in which case nothing is loaded or saved.
func NewProvider(api reservation.API, persist Persister, opts ...Option) *Provider {
	p := &Provider{
		api:         api,
		persist:     persist,
		store:       NewStore(InitialState()),
		logger:      zap.NewNop(),
		now:         time.Now,
		loc:         time.Local,
		callTimeout: defaultCallTimeout,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	if persist != nil {
		p.saves = newSaver(persist, p.logger, defaultSaveTimeout)
	}
	p.store.Subscribe(p.persistOnChange)
	return p
}

// Start loads persisted bookings and pre-populates today's availability.
// It never fails: problems land in the store's error field and, for
// availability, in PhaseDegradedReady. Only the first call does any work.
func (p *Provider) Start(ctx context.Context) Phase {
	p.startOnce.Do(func() {
		p.phase.Store(int32(PhaseLoading))
		p.loadPersisted(ctx)
		p.loaded.Store(true)

		today := p.today()
		slots, err := p.fetch(ctx, today)
		if err != nil {
			p.logger.Error("initial availability lookup failed", zap.String("date", reservation.DateKey(today)), zap.Error(err))
			p.store.Dispatch(SetError{Error: msgUnavailable})
			p.phase.Store(int32(PhaseDegradedReady))
			return
		}
		p.store.Dispatch(InitializeSlots{Date: today, AvailableTimes: slots})
		p.phase.Store(int32(PhaseReady))
		p.logger.Info("bookings provider ready",
			zap.Int("bookings", len(p.store.State().Bookings)),
			zap.Int("slots_today", len(slots)))
	})
	return p.Phase()
}

func (p *Provider) loadPersisted(ctx context.Context) {
	if p.persist == nil {
		return
	}
	list, ok, err := p.persist.LoadBookings(ctx)
	if err != nil {
		p.logger.Error("load saved bookings", zap.Error(err))
		p.store.Dispatch(SetError{Error: msgLoadFailed})
		return
	}
	if !ok {
		return
	}
	p.store.Dispatch(LoadBookings{Bookings: list})
	p.logger.Info("loaded saved bookings", zap.Int("count", len(list)))
}

func (p *Provider) Phase() Phase { return Phase(p.phase.Load()) }

// State returns a deep copy of the store.
func (p *Provider) State() State { return p.store.State() }

// CachedSlots returns the last availability stored for date, if any.
func (p *Provider) CachedSlots(date time.Time) ([]string, bool) {
	s := p.store.State()
	slots, ok := s.Availability[reservation.DateKey(date)]
	return slots, ok
}

// GetAvailableTimeSlots asks the API for date's open slots, records them and
// returns them. A nil date returns an empty list without touching the store.
// API failures are logged and also give an empty list. If ctx is cancelled
// by the time the answer arrives, the store is left alone.
func (p *Provider) GetAvailableTimeSlots(ctx context.Context, date *time.Time) []string {
	if date == nil {
		return []string{}
	}
	slots, err := p.fetch(ctx, *date)
	if err != nil {
		p.logger.Warn("fetch available times", zap.String("date", reservation.DateKey(*date)), zap.Error(err))
		return []string{}
	}
	if ctx.Err() != nil {
		return slots
	}
	p.store.Dispatch(UpdateSlots{Date: *date, AvailableTimes: slots})
	return slots
}

// AddBooking submits b to the API and records it only when accepted.
// A booking without an ID gets one.
func (p *Provider) AddBooking(ctx context.Context, b reservation.Booking) bool {
	ok, err := p.submit(ctx, b)
	if err != nil {
		p.logger.Warn("submit booking", zap.String("date", reservation.DateKey(b.Date)), zap.String("time", b.Time), zap.Error(err))
		p.observeSubmission("error")
		return false
	}
	if !ok {
		p.logger.Info("booking rejected by reservation system", zap.String("date", reservation.DateKey(b.Date)), zap.String("time", b.Time))
		p.observeSubmission("rejected")
		return false
	}
	if b.ID == "" {
		b.ID = p.newID()
	}
	next := p.store.Dispatch(AddBooking{Booking: b})
	p.waitSaved(next.BookingsRev)
	p.observeSubmission("accepted")
	p.logger.Info("booking added",
		zap.String("id", b.ID),
		zap.String("date", reservation.DateKey(b.Date)),
		zap.String("time", b.Time),
		zap.Int("guests", b.Guests))
	return true
}

// ReleaseBooking removes the booking at index. An out-of-range index leaves
// the list alone, sets the store error and returns ErrInvalidIndex.
func (p *Provider) ReleaseBooking(index int) error {
	next := p.store.Dispatch(ReleaseBooking{Index: index})
	if next.Error != nil && *next.Error == errInvalidIndex {
		p.logger.Warn("release booking: index out of range", zap.Int("index", index))
		return internaltypes.ErrInvalidIndex
	}
	p.waitSaved(next.BookingsRev)
	p.logger.Info("booking released", zap.Int("index", index))
	return nil
}

// EditBooking replaces the booking at index. The existing ID is kept when b
// has none; the lookup happens inside the same dispatch. Index errors
// behave as in ReleaseBooking.
func (p *Provider) EditBooking(index int, b reservation.Booking) error {
	next := p.store.Dispatch(EditBooking{Index: index, Booking: b, KeepID: true})
	if next.Error != nil && *next.Error == errInvalidIndex {
		p.logger.Warn("edit booking: index out of range", zap.Int("index", index))
		return internaltypes.ErrInvalidIndex
	}
	p.waitSaved(next.BookingsRev)
	p.logger.Info("booking edited", zap.Int("index", index), zap.String("id", next.Bookings[index].ID))
	return nil
}

// Flush waits for queued bookings saves to finish. Call it before closing
// the storage backend.
func (p *Provider) Flush() {
	if p.saves != nil {
		p.saves.flush()
	}
}

func (p *Provider) fetch(ctx context.Context, date time.Time) ([]string, error) {
	if p.api == nil {
		p.observeAvailability("error")
		return nil, errors.New("reservation api not configured")
	}
	cctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	slots, err := p.api.FetchAvailability(cctx, date)
	if err != nil {
		p.observeAvailability("error")
		return nil, err
	}
	p.observeAvailability("ok")
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

func (p *Provider) submit(ctx context.Context, b reservation.Booking) (bool, error) {
	if p.api == nil {
		return false, errors.New("reservation api not configured")
	}
	cctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.api.SubmitBooking(cctx, b)
}

// persistOnChange queues a save after every bookings change, but only once
// the initial load is done so an empty start state never overwrites storage.
// The write itself happens on the saver goroutine.
func (p *Provider) persistOnChange(prev, next State) {
	if prev.BookingsRev == next.BookingsRev {
		return
	}
	if p.metrics != nil {
		p.metrics.SetBookings(len(next.Bookings))
	}
	if p.saves == nil || !p.loaded.Load() {
		return
	}
	p.saves.offer(next.BookingsRev, next.Bookings)
}

// waitSaved returns once the snapshot for rev, or a newer one, is stored,
// so mutating calls are durable when they return.
func (p *Provider) waitSaved(rev uint64) {
	if p.saves != nil {
		p.saves.wait(rev)
	}
}

func (p *Provider) today() time.Time {
	y, m, d := p.now().In(p.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.loc)
}

func (p *Provider) observeAvailability(outcome string) {
	if p.metrics != nil {
		p.metrics.ObserveAvailability(outcome)
	}
}

func (p *Provider) observeSubmission(outcome string) {
	if p.metrics != nil {
		p.metrics.ObserveSubmission(outcome)
	}
}
