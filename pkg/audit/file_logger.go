package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JSONLogger writes one logrus JSON line per audit event
type JSONLogger struct {
	mu     sync.Mutex
	log    *logrus.Logger
	closer io.Closer
}

// NewJSONLogger writes audit events to w
func NewJSONLogger(w io.Writer) *JSONLogger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return &JSONLogger{log: log}
}

// Log implements Logger
func (l *JSONLogger) Log(ctx context.Context, event *Event) error {
	if event == nil {
		return fmt.Errorf("audit event is nil")
	}
	fields := logrus.Fields{
		"audit":      true,
		"event_type": string(event.EventType),
		"status":     string(event.Status),
	}
	addString(fields, "user_id", event.UserID)
	addString(fields, "username", event.Username)
	addString(fields, "actor_role", event.ActorRole)
	addString(fields, "workspace_id", event.WorkspaceID)
	addString(fields, "resource_type", string(event.ResourceType))
	addString(fields, "resource_id", event.ResourceID)
	addString(fields, "resource_name", event.ResourceName)
	addString(fields, "ip_address", event.IPAddress)
	addString(fields, "user_agent", event.UserAgent)
	addString(fields, "request_id", event.RequestID)
	addString(fields, "method", event.Method)
	addString(fields, "path", event.Path)
	if event.StatusCode != 0 {
		fields["status_code"] = event.StatusCode
	}
	if len(event.Metadata) > 0 {
		fields["metadata"] = event.Metadata
	}
	if event.Changes != nil {
		fields["changes"] = event.Changes
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.log.WithContext(ctx).WithTime(ts).WithFields(fields)
	switch event.Status {
	case EventStatusDenied, EventStatusFailure:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}
	return nil
}

// Close closes the underlying file, if any
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	l.log.SetOutput(io.Discard)
	return err
}

func addString(fields logrus.Fields, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// FileLoggerConfig configures the file logger
type FileLoggerConfig struct {
	BasePath string // Directory holding audit.log
	MaxSize  int64  // Rotate once audit.log reaches this many bytes
	MaxFiles int    // Rotated files to keep
}

// FileLogger is a JSONLogger writing to BasePath/audit.log with size based
// rotation
type FileLogger struct {
	*JSONLogger
	cfg      FileLoggerConfig
	rotateMu sync.Mutex
	file     *os.File
}

// NewFileLogger opens (or creates) the audit log file
func NewFileLogger(cfg FileLoggerConfig) (*FileLogger, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100 << 20
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 10
	}
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	l := &FileLogger{JSONLogger: NewJSONLogger(io.Discard), cfg: cfg}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

// Log implements Logger, rotating the file first when it is full
func (l *FileLogger) Log(ctx context.Context, event *Event) error {
	l.rotateMu.Lock()
	defer l.rotateMu.Unlock()
	if err := l.rotateIfFull(); err != nil {
		return err
	}
	return l.JSONLogger.Log(ctx, event)
}

func (l *FileLogger) path() string {
	return filepath.Join(l.cfg.BasePath, "audit.log")
}

// open must be called with no other writer active
func (l *FileLogger) open() error {
	file, err := os.OpenFile(l.path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	l.JSONLogger.mu.Lock()
	l.file = file
	l.JSONLogger.closer = file
	l.JSONLogger.log.SetOutput(file)
	l.JSONLogger.mu.Unlock()
	return nil
}

func (l *FileLogger) rotateIfFull() error {
	l.JSONLogger.mu.Lock()
	file := l.file
	l.JSONLogger.mu.Unlock()
	if file == nil {
		return fmt.Errorf("audit log is closed")
	}
	info, err := file.Stat()
	if err != nil || info.Size() < l.cfg.MaxSize {
		return nil
	}

	if err := l.JSONLogger.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}
	rotated := filepath.Join(l.cfg.BasePath, fmt.Sprintf("audit-%s.log", time.Now().UTC().Format("20060102T150405.000000000")))
	if err := os.Rename(l.path(), rotated); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	l.prune()
	return l.open()
}

// prune removes the oldest rotated files beyond MaxFiles
func (l *FileLogger) prune() {
	files, err := filepath.Glob(filepath.Join(l.cfg.BasePath, "audit-*.log"))
	if err != nil || len(files) <= l.cfg.MaxFiles {
		return
	}
	sort.Strings(files)
	for _, f := range files[:len(files)-l.cfg.MaxFiles] {
		_ = os.Remove(f)
	}
}

// Close closes the audit log file
func (l *FileLogger) Close() error {
	l.rotateMu.Lock()
	defer l.rotateMu.Unlock()
	l.JSONLogger.mu.Lock()
	l.file = nil
	l.JSONLogger.mu.Unlock()
	return l.JSONLogger.Close()
}
