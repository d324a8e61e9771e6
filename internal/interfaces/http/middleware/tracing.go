// Package middleware provides the HTTP middleware of the CRM API.
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength is the maximum accepted length of a client supplied request id.
const MaxRequestIDLength = 128

// Span attributes set on every server span.
const (
	spanAttrRequestID = attribute.Key("request_id")
	spanAttrTenantID  = attribute.Key("tenant_id")
	spanAttrUserID    = attribute.Key("user_id")
	spanAttrEntity    = attribute.Key("crm.entity")
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are never traced. Health probes would otherwise dominate the traces.
	SkipPaths []string
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "aprovacrm-backend",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/api/v1/health"},
	}
}

func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig starts one server span per request, named "METHOD route"
// (e.g. "GET /api/v1/propostas/:id"). Register SpanAnnotator right after it.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}
	skip := cfg.SkipPaths
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !slices.Contains(skip, r.URL.Path)
	}))
}

// SpanAnnotator decorates the server span on the way back out of the chain.
// By then the JWT middleware has stored the claims, so authenticated routes
// carry tenant_id and user_id.
func SpanAnnotator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := getRequestID(c); id != "" {
			span.SetAttributes(spanAttrRequestID.String(id))
		}
		// Headers are never trusted for identity; only verified claims are used.
		if tenantID := GetJWTTenantID(c); tenantID != "" {
			span.SetAttributes(spanAttrTenantID.String(tenantID))
		}
		if userID := GetJWTUserID(c); userID != "" {
			span.SetAttributes(spanAttrUserID.String(userID))
		}
		if route := c.FullPath(); route != "" {
			span.SetAttributes(spanAttrEntity.String(routeEntity(route)))
		}
		markSpanStatus(span, c.Writer.Status())
	}
}

// markSpanStatus flags 4xx responses as well as 5xx. otelgin leaves client
// errors unset, which hides rejected logins and tenant mismatches.
func markSpanStatus(span trace.Span, status int) {
	if status < http.StatusBadRequest {
		return
	}
	span.SetStatus(codes.Error, spanErrorMessage(status))
}

// getRequestID prefers the id stored by RequestID and falls back to the
// truncated header when that middleware did not run.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDContextKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}

func spanErrorMessage(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "Internal Server Error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Forbidden"
	case status == http.StatusNotFound:
		return "Not Found"
	case status == http.StatusConflict:
		return "Conflict"
	case status == http.StatusRequestEntityTooLarge:
		return "Payload Too Large"
	case status == http.StatusUnprocessableEntity:
		return "Invalid State"
	case status == http.StatusTooManyRequests:
		return "Too Many Requests"
	default:
		return "Client Error"
	}
}
