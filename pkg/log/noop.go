package log

// Discard is a Logger that drops every message.
var Discard Logger = NoopLogger{}

// NoopLogger drops every message. Components fall back to it when no
// logger is configured.
type NoopLogger struct{}

// NewNoopLogger returns a logger that drops every message.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

// OrDiscard returns l, or Discard when l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard
	}
	return l
}

// Debug drops the message.
func (NoopLogger) Debug(string, ...Field) {}

// Info drops the message.
func (NoopLogger) Info(string, ...Field) {}

// Warn drops the message.
func (NoopLogger) Warn(string, ...Field) {}

// Error drops the message.
func (NoopLogger) Error(string, ...Field) {}
