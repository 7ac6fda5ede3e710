package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/workboard/pkg/contextkeys"
)

// Logger records audit events
type Logger interface {
	Log(ctx context.Context, event *Event) error
	Close() error
}

type contextKey string

const loggerKey contextKey = "audit_logger"

// WithLogger adds an audit logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the audit logger from context
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return NopLogger{}
}

// NopLogger discards every event
type NopLogger struct{}

func (NopLogger) Log(ctx context.Context, event *Event) error { return nil }
func (NopLogger) Close() error                                 { return nil }

// newEvent creates an event with the request context filled in
func newEvent(ctx context.Context, r *http.Request, eventType EventType, status EventStatus) *Event {
	event := &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		UserID:    contextkeys.GetUserID(ctx),
		RequestID: contextkeys.GetRequestID(ctx),
	}
	if r != nil {
		event.IPAddress = clientIP(r)
		event.UserAgent = r.UserAgent()
		event.Method = r.Method
		event.Path = r.URL.Path
	}
	return event
}

// clientIP returns the first X-Forwarded-For hop, X-Real-IP or the remote
// address without its port
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// LogSuccess records a successful action with the logger from ctx
func LogSuccess(ctx context.Context, eventType EventType, userID, message string, metadata map[string]interface{}) error {
	event := newEvent(ctx, nil, eventType, EventStatusSuccess)
	if userID != "" {
		event.UserID = userID
	}
	event.ResourceType = ResourceTypeUser
	event.ResourceID = event.UserID
	event.Message = message
	event.Metadata = metadata
	return FromContext(ctx).Log(ctx, event)
}

// LogFailure records a failed action with the logger from ctx
func LogFailure(ctx context.Context, eventType EventType, message string, metadata map[string]interface{}) error {
	event := newEvent(ctx, nil, eventType, EventStatusFailure)
	event.Message = message
	event.Metadata = metadata
	return FromContext(ctx).Log(ctx, event)
}
