package core

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAuthenticationRequired is returned when the remote service rejects our credentials.
	ErrAuthenticationRequired = errors.New("Authentication required")
)

// ValidationError is a local, pre-flight rejection of a payment
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RemoteValidationError carries field-level errors returned by the remote service
type RemoteValidationError struct {
	Fields map[string][]string
}

// Error flattens the field errors, e.g. "Validation failed: amount: exceeds limit".
// Fields are sorted so the message is stable.
func (e *RemoteValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

// TransportError is any remote failure other than validation or authentication
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string {
	return e.Message
}
