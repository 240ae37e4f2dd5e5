package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-engine/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func serve(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMw, err := NewPrometheusMiddleware("test", reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(promMw.Handler())
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/fail", func(c *gin.Context) { c.JSON(http.StatusInternalServerError, gin.H{}) })

	assert.Equal(t, http.StatusOK, serve(r, "/ok").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, "/fail").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, "/nowhere/123").Code)

	duration := family(t, reg, "test_http_request_duration_seconds")
	require.NotNil(t, duration)
	assert.Equal(t, "Длительность HTTP-запросов.", duration.GetHelp())
	assert.Len(t, duration.Metric, 3)

	errs := family(t, reg, "test_http_request_errors_total")
	require.NotNil(t, errs)
	assert.Len(t, errs.Metric, 2)

	// несовпавшие маршруты сводятся в одну метку
	var paths []string
	for _, m := range errs.Metric {
		for _, l := range m.Label {
			if l.GetName() == "path" {
				paths = append(paths, l.GetValue())
			}
		}
	}
	assert.ElementsMatch(t, []string{"/fail", "unmatched"}, paths)
}

func TestPrometheusMiddleware_Inflight(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMw, err := NewPrometheusMiddleware("test", reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(promMw.Handler())

	var during float64
	r.GET("/probe", func(c *gin.Context) {
		during = family(t, reg, "test_http_requests_inflight").Metric[0].Gauge.GetValue()
		c.Status(http.StatusOK)
	})

	serve(r, "/probe")
	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, family(t, reg, "test_http_requests_inflight").Metric[0].Gauge.GetValue())
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware("test", reg)
	require.NoError(t, err)
	_, err = NewPrometheusMiddleware("test", reg)
	assert.Error(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMw, err := NewPrometheusMiddleware("test", reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(r, reg)

	serve(r, "/metrics")
	w := serve(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_inflight")
}

func TestRequestLogger_TraceID(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestLogger(logging.Discard()).Handler())

	var captured string
	r.GET("/test", func(c *gin.Context) {
		id, ok := c.Get(TraceIDKey)
		require.True(t, ok)
		captured = id.(string)
		c.JSON(http.StatusOK, gin.H{"trace_id": captured})
	})

	w := serve(r, "/test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, w.Header().Get("X-Trace-Id"))
	assert.Contains(t, w.Body.String(), captured)
}

func TestRequestLogger_LogFormat(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(NewRequestLogger(logging.NewWriterLogger("api", &buf, logging.INFO)).Handler())
	r.GET("/chunks/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, "/chunks/7")
	out := buf.String()
	assert.Contains(t, out, "[HTTP] < GET /chunks/:id 200")
	assert.NotContains(t, out, "[HTTP] >", "входящий запрос пишется на DEBUG")
}
