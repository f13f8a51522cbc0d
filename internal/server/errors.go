// Package server provides the HTML form and JSON API of the job application assistant.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNoResume indicates that neither the request nor the server supplied resume text.
type ErrNoResume struct{}

func (e *ErrNoResume) Error() string {
	return "no resume configured on the server; send resume_text"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		noResumeErr   *ErrNoResume
		maxBytesErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &noResumeErr):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// validationError turns the first validator failure into an ErrValidation named by JSON field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg := fmt.Sprintf("failed '%s' constraint", fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return &ErrValidation{Field: jsonName(fe.Field()), Message: msg}
}

// jsonName converts a Go field name such as JobText to job_text.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
