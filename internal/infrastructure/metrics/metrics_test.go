package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/infrastructure/metrics"
)

func TestObserveRequest_CuentaPorRutaYCodigo(t *testing.T) {
	m := metrics.New("test")
	m.ObserveRequest("GET", "/api/v1/products", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/products", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/products", 404, time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(), "test_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // dos series: 200 y 404
}

func TestEventPublished_SeparaErrores(t *testing.T) {
	m := metrics.New("test")
	m.EventPublished("order.status_changed", false)
	m.EventPublished("order.status_changed", true)
	m.JobRun("maintenance_due", "ok")

	for _, name := range []string{"test_domain_events_total", "test_domain_event_errors_total", "test_scheduler_runs_total"} {
		n, err := testutil.GatherAndCount(m.Registry(), name)
		require.NoError(t, err)
		assert.Equal(t, 1, n, name)
	}
}

func TestHandler_ExponeFormatoTexto(t *testing.T) {
	m := metrics.New("test")
	m.ObserveRequest("POST", "/api/v1/orders", 201, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `test_http_requests_total{method="POST",route="/api/v1/orders",status="201"} 1`)
}
