package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func metricsRouter(mp *sdkmetric.MeterProvider, tenantID string) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if tenantID != "" {
			c.Set(JWTTenantIDKey, tenantID)
		}
		c.Next()
	})
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/api/v1/propostas/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/api/v1/clientes", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cpf inválido"})
	})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func attrValue(set attribute.Set, key string) (string, bool) {
	v, ok := set.Value(attribute.Key(key))
	if !ok {
		return "", false
	}
	return v.Emit(), true
}

func TestHTTPMetricsWithMeter_RecordsRequest(t *testing.T) {
	mp, reader := newTestMeterProvider(t)
	router := metricsRouter(mp, "tenant-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/propostas/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	metrics := collect(t, reader)

	total, ok := metrics["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	dp := total.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)

	for key, want := range map[string]string{
		"http.method":       "GET",
		"http.route":        "/api/v1/propostas/:id",
		"http.status_code":  "200",
		"http.status_class": "2xx",
		"crm.entity":        "propostas",
		"tenant_id":         "tenant-1",
	} {
		got, ok := attrValue(dp.Attributes, key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	duration, ok := metrics["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)
	_, hasTenant := attrValue(duration.DataPoints[0].Attributes, "tenant_id")
	assert.False(t, hasTenant, "latency series stay tenant-free")

	active, ok := metrics["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(0), active.DataPoints[0].Value)

	assert.Contains(t, metrics, "http_server_response_size_bytes")
}

func TestHTTPMetricsWithMeter_RequestSizeAndStatus(t *testing.T) {
	mp, reader := newTestMeterProvider(t)
	router := metricsRouter(mp, "")

	body := `{"nome":"Maria","cpf":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clientes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	metrics := collect(t, reader)

	size, ok := metrics["http_server_request_size_bytes"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.Equal(t, float64(len(body)), size.DataPoints[0].Sum)

	total := metrics["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.Len(t, total.DataPoints, 1)
	class, _ := attrValue(total.DataPoints[0].Attributes, "http.status_class")
	assert.Equal(t, "4xx", class)
	entity, _ := attrValue(total.DataPoints[0].Attributes, "crm.entity")
	assert.Equal(t, "clientes", entity)
	_, hasTenant := attrValue(total.DataPoints[0].Attributes, "tenant_id")
	assert.False(t, hasTenant)
}

func TestHTTPMetricsWithMeter_UnmatchedRoute(t *testing.T) {
	mp, reader := newTestMeterProvider(t)
	router := metricsRouter(mp, "")

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	total := collect(t, reader)["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.Len(t, total.DataPoints, 1)
	route, _ := attrValue(total.DataPoints[0].Attributes, "http.route")
	assert.Equal(t, "unknown", route)
}

func TestHTTPMetrics_DisabledIsPassthrough(t *testing.T) {
	mp, reader := newTestMeterProvider(t)

	for name, h := range map[string]gin.HandlerFunc{
		"config disabled":     HTTPMetrics(HTTPMetricsConfig{Enabled: false}),
		"nil meter provider":  HTTPMetrics(HTTPMetricsConfig{Enabled: true}),
		"with meter disabled": HTTPMetricsWithMeter(mp.Meter("http.server"), false),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(h)
			router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	assert.Empty(t, collect(t, reader))
}

func TestRouteEntity(t *testing.T) {
	tests := map[string]string{
		"/api/v1/clientes":                 "clientes",
		"/api/v1/propostas/:id/documentos": "propostas",
		"/api/v1/dashboard/kpis":           "dashboard",
		"/api/v1":                          "system",
		"/api/v1/:id":                      "system",
		"/health":                          "system",
		"unknown":                          "system",
	}
	for route, want := range tests {
		assert.Equal(t, want, routeEntity(route), route)
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusCreated))
	assert.Equal(t, "3xx", statusClass(http.StatusNotModified))
	assert.Equal(t, "5xx", statusClass(http.StatusServiceUnavailable))
	assert.Equal(t, "unknown", statusClass(0))
}

func TestDefaultHTTPMetricsConfig(t *testing.T) {
	cfg := DefaultHTTPMetricsConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "aprovacrm-backend", cfg.ServiceName)
	assert.Nil(t, cfg.MeterProvider)
}
