package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/application/bookings"
	"github.com/example/little-lemon/internal/application/usecases"
	"github.com/example/little-lemon/internal/domain/reservation"
	"github.com/example/little-lemon/internal/internaltypes"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// bookingRequest is the form as submitted: date is "YYYY-MM-DD".
type bookingRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          int    `json:"guests"`
	Occasion        string `json:"occasion"`
	Seating         string `json:"seating"`
	SpecialRequests string `json:"specialRequests"`
}

func (s *Server) toBooking(req bookingRequest) (reservation.Booking, error) {
	d, err := reservation.ParseDateKey(strings.TrimSpace(req.Date), s.opts.Location)
	if err != nil {
		return reservation.Booking{}, reservation.ValidationError{"date": "Please select a valid date"}
	}
	slot := strings.TrimSpace(req.Time)
	if k, err := reservation.NormalizeSlotKey(slot); err == nil {
		slot = k
	}
	return reservation.Booking{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Date:            d,
		Time:            slot,
		Guests:          req.Guests,
		Occasion:        strings.TrimSpace(req.Occasion),
		Seating:         strings.TrimSpace(req.Seating),
		SpecialRequests: req.SpecialRequests,
	}, nil
}

type healthResponse struct {
	Status string  `json:"status"`
	Error  *string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	phase := s.svc.Phase()
	resp := healthResponse{Status: phase.String(), Error: s.svc.State().Error}
	code := http.StatusOK
	if phase != bookings.PhaseReady && phase != bookings.PhaseDegradedReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.State())
}

type slotsResponse struct {
	Date   string   `json:"date,omitempty"`
	Slots  []string `json:"slots"`
	Labels []string `json:"labels"`
}

// handleSlots answers GET /api/slots?date=YYYY-MM-DD. Without a date the
// list is empty.
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("date"))
	if q == "" {
		writeJSON(w, http.StatusOK, slotsResponse{Slots: s.svc.GetAvailableTimeSlots(r.Context(), nil), Labels: []string{}})
		return
	}
	d, err := reservation.ParseDateKey(q, s.opts.Location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD"})
		return
	}
	slots := s.svc.GetAvailableTimeSlots(r.Context(), &d)
	labels := make([]string, 0, len(slots))
	for _, sl := range slots {
		labels = append(labels, reservation.To12Hour(sl))
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: reservation.DateKey(d), Slots: slots, Labels: labels})
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := reservation.Query{
		Name:       v.Get("name"),
		DateKey:    v.Get("date"),
		Occasion:   v.Get("occasion"),
		SortBy:     reservation.SortField(strings.ToLower(v.Get("sort"))),
		Descending: strings.EqualFold(v.Get("order"), "desc"),
	}
	switch q.SortBy {
	case "", reservation.SortByDate, reservation.SortByName, reservation.SortByGuests, reservation.SortByOccasion:
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "sort must be one of date, name, guests, occasion"})
		return
	}
	writeJSON(w, http.StatusOK, q.Apply(s.svc.State().Bookings))
}

// handleCreateBooking validates the form, checks the slot is still open,
// and submits it. With no time given the earliest open slot is booked.
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := s.toBooking(req)
	if err != nil {
		writeValidation(w, err)
		return
	}
	if b.Time != "" {
		if err := s.opts.Schema.Validate(b, s.opts.Now()); err != nil {
			writeValidation(w, err)
			return
		}
	}

	booked, err := s.book.Execute(r.Context(), usecases.Request{Booking: b})
	var verr reservation.ValidationError
	switch {
	case err == nil:
		if s.opts.Drafts != nil {
			s.opts.Drafts.Clear(w)
		}
		writeJSON(w, http.StatusCreated, s.lookup(booked))
	case errors.As(err, &verr):
		writeValidation(w, verr)
	case errors.Is(err, usecases.ErrNoSlots):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Selected time is no longer available"})
	case errors.Is(err, usecases.ErrRejected):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Booking could not be confirmed, please try again"})
	default:
		s.logger.Error("create booking", zap.Error(err))
		writeErr(w, err, http.StatusInternalServerError)
	}
}

// lookup finds b's current position in the list by ID.
func (s *Server) lookup(b reservation.Booking) reservation.Indexed {
	list := s.svc.State().Bookings
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ID == b.ID {
			return reservation.Indexed{Index: i, Booking: list[i]}
		}
	}
	return reservation.Indexed{Index: -1, Booking: b}
}

func (s *Server) handleEditBooking(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := s.toBooking(req)
	if err == nil {
		err = s.opts.Schema.Validate(b, s.opts.Now())
	}
	if err != nil {
		writeValidation(w, err)
		return
	}
	if err := s.svc.EditBooking(idx, b); err != nil {
		writeIndexErr(w, err)
		return
	}
	if st := s.svc.State(); idx < len(st.Bookings) {
		b = st.Bookings[idx]
	}
	writeJSON(w, http.StatusOK, reservation.Indexed{Index: idx, Booking: b})
}

func (s *Server) handleReleaseBooking(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	if err := s.svc.ReleaseBooking(idx); err != nil {
		writeIndexErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := s.opts.Drafts.Load(r)
	if errors.Is(err, internaltypes.ErrNotFound) {
		s.opts.Drafts.Clear(w)
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no saved draft"})
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.opts.Drafts.Save(w, req); err != nil {
		s.logger.Error("save draft", zap.Error(err))
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	s.opts.Drafts.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "index must be an integer"})
		return 0, false
	}
	return idx, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	var verr reservation.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: verr})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
}

func writeIndexErr(w http.ResponseWriter, err error) {
	if errors.Is(err, internaltypes.ErrInvalidIndex) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	writeErr(w, err, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, errorBody{Error: err.Error()})
}
