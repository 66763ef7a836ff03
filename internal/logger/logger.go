package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextKey string

// Context keys understood by WithContext
const (
	RequestIDKey  contextKey = "request_id"
	SourceUserKey contextKey = "source_user"
	EventIDKey    contextKey = "event_id"
)

// Logger wraps logrus for structured logging with context support
type Logger struct {
	*logrus.Entry
}

// New creates a new logger
func New() *Logger {
	return &Logger{
		Entry: logrus.NewEntry(logrus.StandardLogger()),
	}
}

// FromEntry wraps an existing logrus entry
func FromEntry(entry *logrus.Entry) *Logger {
	if entry == nil {
		return New()
	}
	return &Logger{Entry: entry}
}

// WithContext creates a logger carrying request and event identifiers from ctx
func WithContext(ctx context.Context) *Logger {
	logger := New()
	if ctx == nil {
		return logger
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger.Entry = logger.Entry.WithField("request_id", requestID)
	}
	if eventID, ok := ctx.Value(EventIDKey).(string); ok && eventID != "" {
		logger.Entry = logger.Entry.WithField("event_id", eventID)
	}
	if user, ok := ctx.Value(SourceUserKey).(string); ok && user != "" {
		logger.Entry = logger.Entry.WithField("source_user", user)
	} else if username, ok := ctx.Value("username").(string); ok && username != "" {
		// set by the auth middleware on dashboard requests
		logger.Entry = logger.Entry.WithField("source_user", username)
	}

	return logger
}

// ContextWithEvent returns a child context tagged with the inbound event and its sender
func ContextWithEvent(ctx context.Context, eventID, sourceUser string) context.Context {
	if eventID != "" {
		ctx = context.WithValue(ctx, EventIDKey, eventID)
	}
	if sourceUser != "" {
		ctx = context.WithValue(ctx, SourceUserKey, sourceUser)
	}
	return ctx
}

// WithField adds a field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Entry: l.Entry.WithField(key, value),
	}
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		Entry: l.Entry.WithFields(fields),
	}
}

// WithError adds an error field to the logger
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Entry: l.Entry.WithError(err),
	}
}
