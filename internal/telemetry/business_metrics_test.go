package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBusinessMetrics_Counters(t *testing.T) {
	m := NewBusinessMetrics("test", prometheus.NewRegistry())

	m.ProductCreated(OutcomeSuccess)
	m.ProductCreated(OutcomeSuccess)
	m.ProductCreated(OutcomeRejected)
	m.Login(OutcomeFailed)
	m.SessionEvent("swept", 3)
	m.SessionEvent("swept", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProductsCreated.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsCreated.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Sessions.WithLabelValues("swept")))
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics

	assert.NotPanics(t, func() {
		m.ProductCreated(OutcomeSuccess)
		m.DashboardServed("full", 10)
		m.ImageUploaded(OutcomeSuccess, 1024)
		m.EventPublished("product.created", OutcomeSuccess)
	})
}
