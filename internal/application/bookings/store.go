package bookings

import (
	"sync"
	"time"

	"github.com/example/little-lemon/internal/domain/reservation"
)

const errInvalidIndex = "invalid booking index"

// State is the store contents. Values handed out by Store are copies;
// values inside the reducer are treated as immutable.
type State struct {
	Bookings     []reservation.Booking `json:"bookings"`
	Availability map[string][]string   `json:"availableTimeSlots"`
	Error        *string               `json:"error"`

	// BookingsRev changes whenever Bookings changes. It lets listeners
	// tell a bookings mutation from an availability update.
	BookingsRev uint64 `json:"-"`
}

func InitialState() State {
	return State{
		Bookings:     []reservation.Booking{},
		Availability: map[string][]string{},
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{
		Bookings:     append([]reservation.Booking(nil), s.Bookings...),
		Availability: make(map[string][]string, len(s.Availability)),
		BookingsRev:  s.BookingsRev,
	}
	if out.Bookings == nil {
		out.Bookings = []reservation.Booking{}
	}
	for k, v := range s.Availability {
		out.Availability[k] = append([]string(nil), v...)
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	return out
}

type Action interface{ isAction() }

// InitializeSlots records the first availability lookup for a date.
type InitializeSlots struct {
	Date           time.Time
	AvailableTimes []string
}

// UpdateSlots refreshes availability for a date. Same effect as InitializeSlots.
type UpdateSlots struct {
	Date           time.Time
	AvailableTimes []string
}

type AddBooking struct{ Booking reservation.Booking }

type ReleaseBooking struct{ Index int }

// EditBooking replaces the booking at Index. With KeepID set, a Booking
// without an ID inherits the ID of the entry it replaces.
type EditBooking struct {
	Index   int
	Booking reservation.Booking
	KeepID  bool
}

// SetError sets the error field; an empty message clears it.
type SetError struct{ Error string }

// LoadBookings replaces the whole list, used once with persisted data.
type LoadBookings struct{ Bookings []reservation.Booking }

func (InitializeSlots) isAction() {}
func (UpdateSlots) isAction()     {}
func (AddBooking) isAction()      {}
func (ReleaseBooking) isAction()  {}
func (EditBooking) isAction()     {}
func (SetError) isAction()        {}
func (LoadBookings) isAction()    {}

// Reduce is the only state transition. It never panics and never does I/O;
// an action it does not understand returns state unchanged.
// Successful booking mutations clear the error field. Bad indices leave the
// list alone and set it.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case InitializeSlots:
		return withSlots(state, a.Date, a.AvailableTimes)
	case UpdateSlots:
		return withSlots(state, a.Date, a.AvailableTimes)

	case AddBooking:
		next := make([]reservation.Booking, 0, len(state.Bookings)+1)
		next = append(next, state.Bookings...)
		next = append(next, a.Booking)
		return withBookings(state, next)

	case ReleaseBooking:
		if a.Index < 0 || a.Index >= len(state.Bookings) {
			return withError(state, errInvalidIndex)
		}
		next := make([]reservation.Booking, 0, len(state.Bookings)-1)
		next = append(next, state.Bookings[:a.Index]...)
		next = append(next, state.Bookings[a.Index+1:]...)
		return withBookings(state, next)

	case EditBooking:
		if a.Index < 0 || a.Index >= len(state.Bookings) {
			return withError(state, errInvalidIndex)
		}
		b := a.Booking
		if a.KeepID && b.ID == "" {
			b.ID = state.Bookings[a.Index].ID
		}
		next := append([]reservation.Booking(nil), state.Bookings...)
		next[a.Index] = b
		return withBookings(state, next)

	case SetError:
		return withError(state, a.Error)

	case LoadBookings:
		next := append([]reservation.Booking(nil), a.Bookings...)
		if next == nil {
			next = []reservation.Booking{}
		}
		return withBookings(state, next)

	default:
		return state
	}
}

func withSlots(state State, date time.Time, times []string) State {
	avail := make(map[string][]string, len(state.Availability)+1)
	for k, v := range state.Availability {
		avail[k] = v
	}
	slots := append([]string(nil), times...)
	if slots == nil {
		slots = []string{}
	}
	avail[reservation.DateKey(date)] = slots
	state.Availability = avail
	return state
}

func withBookings(state State, list []reservation.Booking) State {
	state.Bookings = list
	state.BookingsRev++
	state.Error = nil
	return state
}

func withError(state State, msg string) State {
	if msg == "" {
		state.Error = nil
		return state
	}
	state.Error = &msg
	return state
}

// Listener observes a committed transition. Listeners run outside the
// store lock, one at a time and in dispatch order. They may call State but
// must not call Dispatch, which would wait on its own notification turn.
type Listener func(prev, next State)

// Store holds State behind a single Dispatch entry point.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	seq       uint64

	// turn admits dispatches to their listeners in seq order.
	notifyMu sync.Mutex
	turn     *sync.Cond
	notified uint64
}

func NewStore(initial State) *Store {
	s := &Store{state: initial, listeners: make(map[int]Listener)}
	s.turn = sync.NewCond(&s.notifyMu)
	return s
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	ls := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			ls = append(ls, l)
		}
	}
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	s.notify(seq, ls, prev, next)
	return next.Clone()
}

func (s *Store) notify(seq uint64, ls []Listener, prev, next State) {
	s.notifyMu.Lock()
	for s.notified != seq {
		s.turn.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.notified++
		s.turn.Broadcast()
		s.notifyMu.Unlock()
	}()
	for _, l := range ls {
		l(prev, next)
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
