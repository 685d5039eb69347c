package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type BookingMetrics struct {
	availability *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	bookings     prometheus.Gauge
}

var (
	bookingOnce     sync.Once
	bookingRegistry *BookingMetrics
)

// Bookings returns the process-wide booking metrics, registered with the
// default prometheus registry on first use.
func Bookings() *BookingMetrics {
	bookingOnce.Do(func() {
		bookingRegistry = &BookingMetrics{
			availability: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "littlelemon_availability_lookups_total",
				Help: "Availability lookups against the reservation API by outcome.",
			}, []string{"outcome"}),
			submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "littlelemon_booking_submissions_total",
				Help: "Booking submissions by outcome (accepted, rejected, error).",
			}, []string{"outcome"}),
			bookings: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "littlelemon_bookings",
				Help: "Bookings currently held in the store.",
			}),
		}
		prometheus.MustRegister(
			bookingRegistry.availability,
			bookingRegistry.submissions,
			bookingRegistry.bookings,
		)
	})
	return bookingRegistry
}

func (m *BookingMetrics) ObserveAvailability(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.availability.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) SetBookings(n int) {
	if m == nil {
		return
	}
	m.bookings.Set(float64(n))
}
