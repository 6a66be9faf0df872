package app

import (
	"time"

	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/pkg/log"
)

// UpdateDecodePolicy decides what happens when an update succeeds at the
// transport level but its response body cannot be decoded.
type UpdateDecodePolicy int

const (
	// SwallowUpdateDecodeErrors leaves both the collection and the error
	// slot untouched and only logs a warning.
	SwallowUpdateDecodeErrors UpdateDecodePolicy = iota

	// ReportUpdateDecodeErrors records the failure in the error slot, the
	// same as for the other operations.
	ReportUpdateDecodeErrors
)

// String returns the policy name used in configuration.
func (p UpdateDecodePolicy) String() string {
	switch p {
	case SwallowUpdateDecodeErrors:
		return "swallow"
	case ReportUpdateDecodeErrors:
		return "report"
	default:
		return "unknown"
	}
}

// EventHandler receives store events. Calls happen synchronously: state
// changes on the caller of Start/Close, operations on the dispatcher.
type EventHandler interface {
	EventEmitter

	// OnOperation is called once an operation has settled and its outcome
	// has been applied. err is nil on success.
	OnOperation(op domain.Operation, err error, duration time.Duration)
}

// Option configures optional behavior of a Store.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	updatePolicy UpdateDecodePolicy
}

func defaultOptions() options {
	return options{
		logger:       log.Discard,
		updatePolicy: SwallowUpdateDecodeErrors,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for store events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithUpdateDecodePolicy selects how undecodable update responses are handled.
func WithUpdateDecodePolicy(policy UpdateDecodePolicy) Option {
	return func(o *options) {
		o.updatePolicy = policy
	}
}
