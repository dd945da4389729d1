package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return sr, tp
}

func tracedRouter(tp *sdktrace.TracerProvider, status int) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service", TracerProvider: tp}))
	router.Use(Identity(DefaultIdentityConfig()), SpanEnricher())
	router.POST("/api/v1/console/consolidation/confirm", func(c *gin.Context) {
		c.Status(status)
	})
	return router
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr, tp := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, TracerProvider: tp}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanEnricher(t *testing.T) {
	tenant := uuid.New()

	tests := []struct {
		name    string
		status  int
		errCode codes.Code
		errDesc string
	}{
		{"success leaves status unset", http.StatusOK, codes.Unset, ""},
		{"conflict marks error", http.StatusConflict, codes.Error, "Conflict"},
		{"unprocessable marks client error", http.StatusUnprocessableEntity, codes.Error, "Client Error"},
		{"server error", http.StatusBadGateway, codes.Error, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr, tp := setupTestTracer(t)
			router := tracedRouter(tp, tt.status)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/console/consolidation/confirm", nil)
			req.Header.Set(RequestIDHeader, "req-trace")
			req.Header.Set(TenantHeaderKey, tenant.String())
			req.Header.Set(OperatorHeaderKey, "op-1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			spans := sr.Ended()
			require.Len(t, spans, 1)

			attrs := spanAttrs(spans[0])
			assert.Equal(t, "req-trace", attrs["request_id"].AsString())
			assert.Equal(t, tenant.String(), attrs["tenant_id"].AsString())
			assert.Equal(t, "op-1", attrs["operator_id"].AsString())

			if tt.errCode == codes.Error {
				assert.Equal(t, codes.Error, spans[0].Status().Code)
				assert.Equal(t, tt.errDesc, spans[0].Status().Description)
			} else {
				assert.NotEqual(t, codes.Error, spans[0].Status().Code)
			}
		})
	}
}

func TestSpanEnricher_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanEnricher())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
