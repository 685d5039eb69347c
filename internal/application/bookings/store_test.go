package bookings

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/little-lemon/internal/domain/reservation"
)

type unknownAction struct{}

func (unknownAction) isAction() {}

func booking(name string) reservation.Booking {
	return reservation.Booking{
		Name:   name,
		Email:  "guest@lemon.test",
		Phone:  "5551234567",
		Date:   time.Date(2025, time.May, 11, 0, 0, 0, 0, time.UTC),
		Time:   "19:00",
		Guests: 2,
	}
}

func TestReduce_Slots(t *testing.T) {
	d := time.Date(2025, time.May, 11, 15, 4, 0, 0, time.UTC)
	s := Reduce(InitialState(), InitializeSlots{Date: d, AvailableTimes: []string{"17:00", "18:00"}})
	require.Equal(t, []string{"17:00", "18:00"}, s.Availability["2025-05-11"])

	s = Reduce(s, UpdateSlots{Date: d, AvailableTimes: nil})
	require.NotNil(t, s.Availability["2025-05-11"])
	require.Empty(t, s.Availability["2025-05-11"])
	require.Zero(t, s.BookingsRev)
}

func TestReduce_AddReleaseRoundTrip(t *testing.T) {
	s0 := InitialState()
	s1 := Reduce(s0, AddBooking{Booking: booking("Jane Doe")})
	require.Len(t, s1.Bookings, 1)
	require.Empty(t, s0.Bookings, "input state must not be mutated")

	s2 := Reduce(s1, ReleaseBooking{Index: 0})
	require.Empty(t, s2.Bookings)
	require.Len(t, s1.Bookings, 1)
	require.Nil(t, s2.Error)
}

func TestReduce_ReleaseKeepsOrder(t *testing.T) {
	s := InitialState()
	for _, n := range []string{"A", "B", "C"} {
		s = Reduce(s, AddBooking{Booking: booking(n)})
	}
	s = Reduce(s, ReleaseBooking{Index: 1})
	require.Equal(t, "A", s.Bookings[0].Name)
	require.Equal(t, "C", s.Bookings[1].Name)
}

func TestReduce_EditKeepsLength(t *testing.T) {
	s := Reduce(InitialState(), AddBooking{Booking: booking("A")})
	s = Reduce(s, AddBooking{Booking: booking("B")})

	edited := booking("B2")
	edited.Guests = 6
	next := Reduce(s, EditBooking{Index: 1, Booking: edited})
	require.Len(t, next.Bookings, 2)
	require.Equal(t, "B2", next.Bookings[1].Name)
	require.Equal(t, "B", s.Bookings[1].Name)
}

func TestReduce_EditKeepID(t *testing.T) {
	a := booking("A")
	a.ID = "id-a"
	s := Reduce(InitialState(), AddBooking{Booking: a})

	next := Reduce(s, EditBooking{Index: 0, Booking: booking("A2"), KeepID: true})
	require.Equal(t, "id-a", next.Bookings[0].ID)
	require.Equal(t, "A2", next.Bookings[0].Name)

	withID := booking("A3")
	withID.ID = "id-new"
	next = Reduce(s, EditBooking{Index: 0, Booking: withID, KeepID: true})
	require.Equal(t, "id-new", next.Bookings[0].ID)

	next = Reduce(s, EditBooking{Index: 0, Booking: booking("A4")})
	require.Empty(t, next.Bookings[0].ID)
}

func TestReduce_InvalidIndex(t *testing.T) {
	s := Reduce(InitialState(), AddBooking{Booking: booking("A")})
	for _, a := range []Action{
		ReleaseBooking{Index: -1},
		ReleaseBooking{Index: 1},
		EditBooking{Index: 5, Booking: booking("X")},
	} {
		next := Reduce(s, a)
		require.Equal(t, s.Bookings, next.Bookings)
		require.Equal(t, s.BookingsRev, next.BookingsRev)
		require.NotNil(t, next.Error)
		require.Equal(t, errInvalidIndex, *next.Error)
	}
}

func TestReduce_UnknownActionIsNoop(t *testing.T) {
	s := Reduce(InitialState(), AddBooking{Booking: booking("A")})
	require.Equal(t, s, Reduce(s, unknownAction{}))
	require.Equal(t, s, Reduce(s, nil))
}

func TestReduce_ErrorPolicy(t *testing.T) {
	s := Reduce(InitialState(), SetError{Error: "boom"})
	require.Equal(t, "boom", *s.Error)

	// slot updates leave the error alone
	s = Reduce(s, UpdateSlots{Date: time.Now(), AvailableTimes: []string{"17:00"}})
	require.NotNil(t, s.Error)

	s = Reduce(s, AddBooking{Booking: booking("A")})
	require.Nil(t, s.Error)

	s = Reduce(s, SetError{Error: "again"})
	s = Reduce(s, SetError{})
	require.Nil(t, s.Error)
}

func TestReduce_LoadBookings(t *testing.T) {
	s := Reduce(InitialState(), LoadBookings{Bookings: nil})
	require.NotNil(t, s.Bookings)
	require.Empty(t, s.Bookings)
	require.EqualValues(t, 1, s.BookingsRev)

	s = Reduce(s, LoadBookings{Bookings: []reservation.Booking{booking("A"), booking("B")}})
	require.Len(t, s.Bookings, 2)
}

func TestStateClone_IsDeep(t *testing.T) {
	s := Reduce(InitialState(), AddBooking{Booking: booking("A")})
	s = Reduce(s, UpdateSlots{Date: time.Now(), AvailableTimes: []string{"17:00"}})
	s = Reduce(s, SetError{Error: "x"})

	c := s.Clone()
	c.Bookings[0].Name = "changed"
	for k := range c.Availability {
		c.Availability[k][0] = "changed"
	}
	*c.Error = "changed"

	require.Equal(t, "A", s.Bookings[0].Name)
	for _, v := range s.Availability {
		require.Equal(t, "17:00", v[0])
	}
	require.Equal(t, "x", *s.Error)
}

func TestStore_ListenersInDispatchOrder(t *testing.T) {
	st := NewStore(InitialState())

	var mu sync.Mutex
	var revs []uint64
	unsub := st.Subscribe(func(prev, next State) {
		mu.Lock()
		defer mu.Unlock()
		revs = append(revs, next.BookingsRev)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(AddBooking{Booking: booking("A")})
		}()
	}
	wg.Wait()

	require.Len(t, st.State().Bookings, 50)
	require.Len(t, revs, 50)
	for i, r := range revs {
		require.EqualValues(t, i+1, r)
	}

	unsub()
	st.Dispatch(AddBooking{Booking: booking("B")})
	require.Len(t, revs, 50)
}

func TestStore_DispatchReturnsCopy(t *testing.T) {
	st := NewStore(InitialState())
	got := st.Dispatch(AddBooking{Booking: booking("A")})
	got.Bookings[0].Name = "changed"
	require.Equal(t, "A", st.State().Bookings[0].Name)
}

func TestStore_SlowListenerDoesNotBlockState(t *testing.T) {
	st := NewStore(InitialState())
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	st.Subscribe(func(prev, next State) {
		_ = st.State()
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	})

	first := make(chan State, 1)
	go func() { first <- st.Dispatch(AddBooking{Booking: booking("A")}) }()
	<-entered

	d := time.Date(2025, time.May, 11, 0, 0, 0, 0, time.UTC)
	second := make(chan State, 1)
	go func() { second <- st.Dispatch(UpdateSlots{Date: d, AvailableTimes: []string{"17:00"}}) }()

	// the second action commits while the first listener is still running
	require.Eventually(t, func() bool {
		_, ok := st.State().Availability["2025-05-11"]
		return ok
	}, time.Second, time.Millisecond)
	require.Len(t, st.State().Bookings, 1)

	// but its listeners wait their turn
	select {
	case <-second:
		t.Fatal("second dispatch notified before the first finished")
	default:
	}
	require.EqualValues(t, 1, calls.Load())

	close(release)
	<-first
	<-second
	require.EqualValues(t, 2, calls.Load())
}
