package domain

import "github.com/google/uuid"

// Operation names one of the four remote operations.
type Operation string

const (
	OpFetch  Operation = "fetch"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ErrorState is the most recent unrecovered failure. At most one is active;
// a newer failure replaces it and only a dismissal with a matching ID clears it.
type ErrorState struct {
	// ID is a unique token so observers can tell successive failures apart.
	ID string

	// Op is the operation that failed.
	Op Operation

	// Message is the user-facing text, embedding the underlying error.
	Message string

	// Err is the underlying error, usable with errors.Is.
	Err error
}

// NewErrorState builds an ErrorState with a fresh ID.
func NewErrorState(op Operation, message string, err error) *ErrorState {
	return &ErrorState{
		ID:      uuid.NewString(),
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Error implements error.
func (e *ErrorState) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ErrorState) Unwrap() error {
	return e.Err
}
