package audit

import (
	"net/http"
	"time"
)

// Middleware records rejected and failed API requests. Successful mutations
// are recorded by the domain event Subscriber instead.
type Middleware struct {
	logger Logger
}

// NewMiddleware creates a new audit middleware
func NewMiddleware(logger Logger) *Middleware {
	return &Middleware{logger: logger}
}

// responseWriter captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Handler wraps an HTTP handler with audit logging
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := WithLogger(r.Context(), m.logger)
		r = r.WithContext(ctx)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		eventType, status, ok := classify(wrapped.statusCode)
		if !ok {
			return
		}
		event := newEvent(ctx, r, eventType, status)
		event.ResourceType = ResourceTypeRequest
		event.StatusCode = wrapped.statusCode
		event.Message = http.StatusText(wrapped.statusCode)
		event.Metadata = map[string]interface{}{"duration_ms": time.Since(start).Milliseconds()}
		_ = m.logger.Log(ctx, event)
	})
}

// classify maps a response status to the audit record it produces
func classify(statusCode int) (EventType, EventStatus, bool) {
	switch {
	case statusCode == http.StatusUnauthorized:
		return EventTypeAuthTokenRejected, EventStatusDenied, true
	case statusCode == http.StatusForbidden:
		return EventTypeAuthzAccessDenied, EventStatusDenied, true
	case statusCode >= 500:
		return EventTypeHTTPRequestFailure, EventStatusFailure, true
	}
	return "", "", false
}
