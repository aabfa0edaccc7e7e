// Package errors defines typed errors with categories for user-friendly
// reporting. Every failure of a submission falls into one machine-readable
// Kind so the UI layer can choose presentation (alarming vs informational)
// without string matching. All errors are local to a single submission; none
// are fatal to the session.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NotConfigured indicates the execution endpoint is not configured for
	// the current environment. Fatal for the submission, never retried.
	NotConfigured Kind = "not_configured"
	// Transport indicates a connection-level failure or a malformed response
	// body; no ExecutionResponse exists.
	Transport Kind = "transport_failed"
	// Cancelled indicates a user-initiated abort. Informational, not a
	// failure.
	Cancelled Kind = "cancelled"
	// Backend indicates the backend reported that user code did not execute
	// successfully.
	Backend Kind = "execution_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err belongs to the given category.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
