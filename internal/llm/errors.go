package llm

import (
	"errors"
	"fmt"
)

// ExternalCapabilityError reports a failed, timed out or malformed call to a text-generation provider.
// Callers recover from it by falling back to heuristic tailoring.
type ExternalCapabilityError struct {
	Provider string
	Op       string
	Message  string
	Cause    error
}

func (e *ExternalCapabilityError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExternalCapabilityError) Unwrap() error {
	return e.Cause
}

// IsExternal reports whether err is or wraps an ExternalCapabilityError.
func IsExternal(err error) bool {
	var ext *ExternalCapabilityError
	return errors.As(err, &ext)
}

// ErrUnavailable is returned when no provider is configured.
var ErrUnavailable = errors.New("no text-generation provider configured")
