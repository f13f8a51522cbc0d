package ingestion

import "fmt"

// InputError reports resume or job text that is empty or cannot be parsed.
// Callers recover by continuing with empty signals and recording a note.
type InputError struct {
	Source  string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}
