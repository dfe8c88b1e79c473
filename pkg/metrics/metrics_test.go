package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRecordBatch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordBatch("partial", 2*time.Second, 5, 1)
	m.RecordBatch("ok", time.Second, 3, 0)
	m.RecordAlert("mortality_risk", "critical")
	m.RecordCache(false)

	body := scrape(t, m)
	assert.Contains(t, body, `aquaperf_batches_total{outcome="partial"} 1`)
	assert.Contains(t, body, "aquaperf_units_evaluated_total 8")
	assert.Contains(t, body, "aquaperf_unit_failures_total 1")
	assert.Contains(t, body, `aquaperf_alerts_generated_total{rule="mortality_risk",severity="critical"} 1`)
	assert.Contains(t, body, "aquaperf_report_cache_misses_total 1")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/farms/:farmID", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/farms/F1", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Contains(t, scrape(t, m), `http_requests_total{method="GET",path="/farms/:farmID",status="204"} 1`)
}
