package config

import "fmt"

// ConfigurationError reports an invalid or missing configuration value.
// It is fatal: callers must not run the engine with a configuration that failed validation.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("config error: %s", e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
