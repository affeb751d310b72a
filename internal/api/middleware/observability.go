package middleware

import (
	"net/http"
	"time"

	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// unmatchedRoute labels requests no route pattern matched
const unmatchedRoute = "unmatched"

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP requests.
// It must wrap the ServeMux directly: the matched pattern is read back from the
// request the mux served, and any copy made in between hides it.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method,
				attribute.String("http.method", r.Method),
				attribute.String("http.user_agent", r.UserAgent()),
			)
			defer span.End()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			req := r.WithContext(ctx)
			start := time.Now()

			next.ServeHTTP(rw, req)

			route := req.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			span.SetName(route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}

// responseWriter captures the status code written by the handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Flush keeps streaming responses working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
