package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// BusinessMetrics holds Prometheus metrics for inventory-level observability.
// Methods are safe to call on a nil receiver.
type BusinessMetrics struct {
	// Catalog
	ProductsCreated *prometheus.CounterVec
	ProductsDeleted *prometheus.CounterVec

	// Dashboard
	DashboardViews   *prometheus.CounterVec
	DashboardRecords prometheus.Histogram

	// Profile
	ImageUploads     *prometheus.CounterVec
	ImageUploadBytes prometheus.Histogram
	ProfileUpdates   *prometheus.CounterVec

	// Auth
	Signups  *prometheus.CounterVec
	Logins   *prometheus.CounterVec
	Sessions *prometheus.CounterVec

	// Events
	EventsPublished *prometheus.CounterVec
}

// NewBusinessMetrics creates the metrics and registers them with reg.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "shelf"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		// =======================================================================
		// Catalog
		// =======================================================================
		ProductsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "products_created_total",
				Help:      "Total product create attempts",
			},
			[]string{"outcome"},
		),
		ProductsDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "products_deleted_total",
				Help:      "Total product delete attempts",
			},
			[]string{"outcome"},
		),

		// =======================================================================
		// Dashboard
		// =======================================================================
		DashboardViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dashboard_views_total",
				Help:      "Total dashboard aggregations served",
			},
			[]string{"view"}, // view: full, categories, stats
		),
		DashboardRecords: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dashboard_records",
				Help:      "Number of records aggregated per dashboard request",
				Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000},
			},
		),

		// =======================================================================
		// Profile
		// =======================================================================
		ImageUploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "image_uploads_total",
				Help:      "Total profile image uploads",
			},
			[]string{"outcome"},
		),
		ImageUploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "image_upload_bytes",
				Help:      "Size of accepted profile image uploads",
				Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 9),
			},
		),
		ProfileUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "profile_updates_total",
				Help:      "Total profile updates",
			},
			[]string{"outcome"},
		),

		// =======================================================================
		// Auth
		// =======================================================================
		Signups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "signups_total",
				Help:      "Total sign-up attempts",
			},
			[]string{"outcome"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_total",
				Help:      "Total sign-in attempts",
			},
			[]string{"outcome"},
		),
		Sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_total",
				Help:      "Session lifecycle events",
			},
			[]string{"event"}, // event: created, signed_out, swept
		),

		// =======================================================================
		// Events
		// =======================================================================
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Change events handed to the publisher",
			},
			[]string{"type", "outcome"},
		),
	}
}

// Business is the process-wide instance. Nil until InitBusinessMetrics runs.
var Business *BusinessMetrics

// InitBusinessMetrics creates the global instance on the default registry.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace, prometheus.DefaultRegisterer)
	return Business
}

func (m *BusinessMetrics) ProductCreated(outcome string) {
	if m == nil {
		return
	}
	m.ProductsCreated.WithLabelValues(outcome).Inc()
}

func (m *BusinessMetrics) ProductDeleted(outcome string) {
	if m == nil {
		return
	}
	m.ProductsDeleted.WithLabelValues(outcome).Inc()
}

// DashboardServed records one aggregation over n records.
func (m *BusinessMetrics) DashboardServed(view string, n int) {
	if m == nil {
		return
	}
	m.DashboardViews.WithLabelValues(view).Inc()
	m.DashboardRecords.Observe(float64(n))
}

func (m *BusinessMetrics) ImageUploaded(outcome string, size int64) {
	if m == nil {
		return
	}
	m.ImageUploads.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.ImageUploadBytes.Observe(float64(size))
	}
}

func (m *BusinessMetrics) ProfileUpdated(outcome string) {
	if m == nil {
		return
	}
	m.ProfileUpdates.WithLabelValues(outcome).Inc()
}

func (m *BusinessMetrics) Signup(outcome string) {
	if m == nil {
		return
	}
	m.Signups.WithLabelValues(outcome).Inc()
}

func (m *BusinessMetrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// SessionEvent records created, signed_out or swept sessions.
func (m *BusinessMetrics) SessionEvent(event string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.Sessions.WithLabelValues(event).Add(float64(n))
}

func (m *BusinessMetrics) EventPublished(eventType, outcome string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}
