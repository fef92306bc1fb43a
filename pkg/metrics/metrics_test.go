package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg, "test")

	m.IncBooking("created")
	m.IncBooking("created")
	m.IncBooking("conflict")
	m.IncTransition("cancel", "ok")
	m.IncWebhookEvent("payment.succeeded", "ok")
	m.ObserveHTTPRequest("GET", "/api/v1/appointments/{id}", 200, 10*time.Millisecond)
	m.ObserveDBQuery("query", errors.New("boom"), time.Millisecond)
	m.ObserveLockWait("local", "acquired", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("cancel", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/appointments/{id}", "200")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBooking("created")
		m.IncTransition("cancel", "ok")
		m.ObserveHTTPRequest("GET", "/", 200, time.Second)
		m.ObserveDBQuery("exec", nil, time.Second)
		m.ObserveLockWait("redis", "timeout", time.Second)
		m.IncWebhookEvent("refund.issued", "ok")
	})
}
