package utils

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for HTTP traffic and booking flows.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	sessionOps     *prometheus.CounterVec
	bookingsTotal  *prometheus.CounterVec
	reservationOps *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbook",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicbook",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbook",
			Subsystem: "booking",
			Name:      "session_operations_total",
			Help:      "Session lifecycle operations by outcome",
		}, []string{"operation", "outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbook",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Booking creation attempts by outcome",
		}, []string{"outcome"}),
		reservationOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbook",
			Subsystem: "booking",
			Name:      "reservations_total",
			Help:      "Slot reservation attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.sessionOps, m.bookingsTotal, m.reservationOps)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveSessionOp(operation string, err error) {
	if m == nil {
		return
	}
	m.sessionOps.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) ObserveBookingCreated(err error) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveReservation(err error) {
	if m == nil {
		return
	}
	m.reservationOps.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
