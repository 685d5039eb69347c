package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/little-lemon/internal/application/bookings"
	"github.com/example/little-lemon/internal/domain/reservation"
	"github.com/example/little-lemon/internal/infrastructure/simapi"
)

var testNow = time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, successRate float64, drafts *DraftManager) (*Server, *bookings.Provider) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := func() time.Time { return testNow }
	p := bookings.NewProvider(
		simapi.New(simapi.WithSuccessRate(successRate)),
		nil,
		bookings.WithLogger(logger),
		bookings.WithClock(clock),
		bookings.WithLocation(time.UTC),
	)
	p.Start(context.Background())

	tmpl, err := ParseTemplates()
	require.NoError(t, err)
	return New(p, tmpl, Options{
		Logger:   logger,
		Location: time.UTC,
		Now:      clock,
		Drafts:   drafts,
		Limiter:  NewRateLimiter(100, 100),
	}), p
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validRequest(slot string) bookingRequest {
	return bookingRequest{
		Name:     "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "5551234567",
		Date:     "2025-05-11",
		Time:     slot,
		Guests:   2,
		Occasion: "Birthday",
		Seating:  "Indoor",
	}
}

func firstSlot(t *testing.T, h http.Handler, date string) string {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/api/slots?date="+date, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Slots)
	require.Len(t, resp.Labels, len(resp.Slots))
	return resp.Slots[0]
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestSlots(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/slots?date=2025-05-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, reservation.AvailableSlots(time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)), resp.Slots)
	require.Equal(t, "5:00 PM", resp.Labels[0])

	rec = do(t, h, http.MethodGet, "/api/slots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"slots":[],"labels":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/slots?date=11/05/2025", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateListEditRelease(t *testing.T) {
	s, p := newTestServer(t, 1, nil)
	h := s.Handler()
	slot := firstSlot(t, h, "2025-05-11")

	rec := do(t, h, http.MethodPost, "/api/bookings", validRequest(slot))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created reservation.Indexed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, 0, created.Index)
	require.NotEmpty(t, created.Booking.ID)
	require.Equal(t, slot, created.Booking.Time)

	rec = do(t, h, http.MethodGet, "/api/bookings?name=jane", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []reservation.Indexed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	edit := validRequest(slot)
	edit.Guests = 4
	rec = do(t, h, http.MethodPut, "/api/bookings/0", edit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 4, p.State().Bookings[0].Guests)
	require.Equal(t, created.Booking.ID, p.State().Bookings[0].ID)

	rec = do(t, h, http.MethodPut, "/api/bookings/3", edit)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/bookings/0", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, p.State().Bookings)

	rec = do(t, h, http.MethodDelete, "/api/bookings/0", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/bookings/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_Validation(t *testing.T) {
	s, p := newTestServer(t, 1, nil)
	h := s.Handler()

	bad := validRequest("17:00")
	bad.Email = "not-an-email"
	bad.Guests = 11
	rec := do(t, h, http.MethodPost, "/api/bookings", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Fields, "email")
	require.Contains(t, body.Fields, "guests")

	bad = validRequest("17:00")
	bad.Date = "someday"
	rec = do(t, h, http.MethodPost, "/api/bookings", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/bookings", map[string]any{"unexpected": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Empty(t, p.State().Bookings)
}

func TestCreateBooking_SlotTaken(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	h := s.Handler()

	open := map[string]bool{}
	for _, sl := range reservation.AvailableSlots(time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)) {
		open[sl] = true
	}
	var closed string
	for _, c := range reservation.CandidateSlots {
		if !open[c] {
			closed = c
			break
		}
	}
	require.NotEmpty(t, closed)

	rec := do(t, h, http.MethodPost, "/api/bookings", validRequest(closed))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBooking_Rejected(t *testing.T) {
	s, p := newTestServer(t, 0, nil)
	h := s.Handler()
	slot := firstSlot(t, h, "2025-05-11")

	rec := do(t, h, http.MethodPost, "/api/bookings", validRequest(slot))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Empty(t, p.State().Bookings)
}

func TestListBookings_BadSort(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/bookings?sort=price", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrafts(t *testing.T) {
	hashKey := bytes.Repeat([]byte("h"), 32)
	blockKey := bytes.Repeat([]byte("b"), 32)
	s, _ := newTestServer(t, 1, NewDraftManager(hashKey, blockKey))
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/draft", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	draft := validRequest("")
	draft.SpecialRequests = "window seat"
	rec = do(t, h, http.MethodPut, "/api/draft", draft)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	rec = do(t, h, http.MethodGet, "/api/draft", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var got bookingRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, draft, got)

	rec = do(t, h, http.MethodDelete, "/api/draft", nil, cookies...)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

	tampered := &http.Cookie{Name: draftName, Value: cookies[0].Value + "x"}
	rec = do(t, h, http.MethodGet, "/api/draft", nil, tampered)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDraftsDisabled(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/api/draft", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHomePage(t *testing.T) {
	s, p := newTestServer(t, 1, nil)
	h := s.Handler()
	d := time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)
	slots := p.GetAvailableTimeSlots(context.Background(), &d)
	require.True(t, p.AddBooking(context.Background(), reservation.Booking{
		Name: "Jane Doe", Date: d, Time: slots[0], Guests: 2,
	}))

	rec := do(t, h, http.MethodGet, "/?date=2025-05-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Available times for 2025-05-11")
	require.Contains(t, body, "Jane Doe")
	require.Contains(t, body, reservation.To12Hour(slots[0]))
	require.True(t, strings.HasPrefix(rec.Header().Get("content-type"), "text/html"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, 1, nil)
	s.opts.Limiter = NewRateLimiter(0.001, 1)
	h := s.Handler()

	rec := do(t, h, http.MethodDelete, "/api/bookings/0", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/bookings/0", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// reads are not limited
	rec = do(t, h, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_SweepsIdleVisitors(t *testing.T) {
	t0 := time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)
	now := t0
	l := NewRateLimiter(10, 10)
	l.now = func() time.Time { return now }
	keys := func() []string {
		l.mu.Lock()
		defer l.mu.Unlock()
		out := make([]string, 0, len(l.visitors))
		for k := range l.visitors {
			out = append(out, k)
		}
		return out
	}

	require.True(t, l.allow("a"))
	now = t0.Add(11 * time.Minute)
	require.True(t, l.allow("b"))
	require.ElementsMatch(t, []string{"b"}, keys())

	// no sweep until visitorIdle has passed since the last one
	now = t0.Add(15 * time.Minute)
	require.True(t, l.allow("d"))
	now = t0.Add(20 * time.Minute)
	require.True(t, l.allow("e"))
	require.ElementsMatch(t, []string{"b", "d", "e"}, keys())

	now = t0.Add(22 * time.Minute)
	require.True(t, l.allow("c"))
	require.ElementsMatch(t, []string{"c", "d", "e"}, keys())
}

func TestClientID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	require.Equal(t, "10.0.0.1", clientID(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", clientID(r))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", clientID(r))
}
