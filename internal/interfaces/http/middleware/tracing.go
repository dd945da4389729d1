// Package middleware provides the gin middleware of the console API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps the request id copied onto spans
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider when set.
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "opsconsole-backend",
		Enabled:     true,
	}
}

// TracingWithConfig returns the otelgin server span middleware. The span
// is named after the route pattern, e.g. "POST /api/v1/console/consolidation/confirm".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher copies the request id and the console identity onto the
// server span, and marks 4xx/5xx responses as errors. Register it after
// TracingWithConfig and Identity.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		enrichSpanWithAttributes(c, span)

		c.Next()

		markSpanStatus(span, c.Writer.Status())
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := GetRequestID(c); requestID != "" {
		if len(requestID) > MaxRequestIDLength {
			requestID = requestID[:MaxRequestIDLength]
		}
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tenantID := GetTenantID(c); tenantID != uuid.Nil {
		span.SetAttributes(attribute.String("tenant_id", tenantID.String()))
	}
	if operatorID := GetOperatorID(c); operatorID != "" {
		span.SetAttributes(attribute.String("operator_id", operatorID))
	}
}

func markSpanStatus(span trace.Span, statusCode int) {
	if statusCode < http.StatusBadRequest {
		return
	}

	var errorMessage string
	switch {
	case statusCode >= http.StatusInternalServerError:
		errorMessage = "Internal Server Error"
	case statusCode == http.StatusNotFound:
		errorMessage = "Not Found"
	case statusCode == http.StatusConflict:
		errorMessage = "Conflict"
	default:
		errorMessage = "Client Error"
	}
	span.SetStatus(codes.Error, errorMessage)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
}
