package log

import "time"

// Logger is the structured logger every postsync component writes to.
// The CLI backs it with zerolog; library users may plug in their own.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Any attaches an arbitrary value; adapters fall back to reflection for it.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// String attaches a string value.
func String(key, value string) Field {
	return Any(key, value)
}

// Int attaches an int value, such as a post id or a count.
func Int(key string, value int) Field {
	return Any(key, value)
}

// Uint64 attaches an unsigned counter such as a snapshot version.
func Uint64(key string, value uint64) Field {
	return Any(key, value)
}

// Bool attaches a flag.
func Bool(key string, value bool) Field {
	return Any(key, value)
}

// Duration attaches a time.Duration.
func Duration(key string, value time.Duration) Field {
	return Any(key, value)
}

// Err attaches err under the "error" key.
func Err(err error) Field {
	return Any("error", err)
}
