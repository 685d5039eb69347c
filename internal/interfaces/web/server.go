package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/little-lemon/internal/application/bookings"
	"github.com/example/little-lemon/internal/application/usecases"
	"github.com/example/little-lemon/internal/domain/reservation"
)

// BookingService is what the HTTP layer needs from the bookings provider.
type BookingService interface {
	Phase() bookings.Phase
	State() bookings.State
	GetAvailableTimeSlots(ctx context.Context, date *time.Time) []string
	AddBooking(ctx context.Context, b reservation.Booking) bool
	ReleaseBooking(index int) error
	EditBooking(index int, b reservation.Booking) error
}

type Options struct {
	Addr     string
	Logger   *zap.Logger
	Location *time.Location
	Now      func() time.Time
	Schema   reservation.Schema

	// Drafts is nil when no cookie keys are configured; /api/draft is then absent.
	Drafts  *DraftManager
	Limiter *RateLimiter
}

type Server struct {
	svc    BookingService
	book   usecases.FindAndBook
	tmpl   *template.Template
	opts   Options
	logger *zap.Logger
}

func New(svc BookingService, tmpl *template.Template, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		svc:    svc,
		book:   usecases.FindAndBook{Provider: svc, Schema: opts.Schema, Now: opts.Now},
		tmpl:   tmpl,
		opts:   opts,
		logger: opts.Logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logging)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if s.tmpl != nil {
		r.Get("/", s.handleHome)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/state", s.handleState)
		api.Get("/slots", s.handleSlots)

		api.Route("/bookings", func(br chi.Router) {
			br.Get("/", s.handleListBookings)
			br.With(s.limit).Post("/", s.handleCreateBooking)
			br.With(s.limit).Put("/{index}", s.handleEditBooking)
			br.With(s.limit).Delete("/{index}", s.handleReleaseBooking)
		})

		if s.opts.Drafts != nil {
			api.Get("/draft", s.handleGetDraft)
			api.Put("/draft", s.handlePutDraft)
			api.Delete("/draft", s.handleDeleteDraft)
		}
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.opts.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}

func (s *Server) limit(next http.Handler) http.Handler {
	if s.opts.Limiter == nil {
		return next
	}
	return s.opts.Limiter.Middleware(next)
}

func (s *Server) today() time.Time {
	y, m, d := s.opts.Now().In(s.opts.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.opts.Location)
}

type homeData struct {
	Date     string
	Today    string
	Slots    []string
	Bookings []reservation.Indexed
	Error    string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	date := s.today()
	if q := r.URL.Query().Get("date"); q != "" {
		if d, err := reservation.ParseDateKey(q, s.opts.Location); err == nil {
			date = d
		}
	}
	slots := s.svc.GetAvailableTimeSlots(r.Context(), &date)
	st := s.svc.State()

	data := homeData{
		Date:     reservation.DateKey(date),
		Today:    reservation.DateKey(s.today()),
		Slots:    slots,
		Bookings: reservation.Query{}.Apply(st.Bookings),
	}
	if st.Error != nil {
		data.Error = *st.Error
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "bookings.html", data); err != nil {
		s.logger.Error("render bookings page", zap.Error(err))
		writeErr(w, err, http.StatusInternalServerError)
	}
}
