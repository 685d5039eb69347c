package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBookingMetrics(t *testing.T) {
	m := Bookings()
	require.Same(t, m, Bookings())

	before := testutil.ToFloat64(m.submissions.WithLabelValues("accepted"))
	m.ObserveSubmission("accepted")
	require.Equal(t, before+1, testutil.ToFloat64(m.submissions.WithLabelValues("accepted")))

	m.ObserveAvailability("")
	require.GreaterOrEqual(t, testutil.ToFloat64(m.availability.WithLabelValues("unknown")), 1.0)

	m.SetBookings(3)
	require.Equal(t, 3.0, testutil.ToFloat64(m.bookings))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveAvailability("ok")
	m.ObserveSubmission("ok")
	m.SetBookings(1)
}
