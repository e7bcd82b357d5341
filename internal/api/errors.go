package api

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	codeValidation    = "validation_error"
	codeConfiguration = "configuration_error"
	codeInternal      = "internal_error"
	codeRateLimited   = "rate_limited"

	internalErrorDetail = "An internal error occurred while processing resumes"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrConfiguration indicates the service cannot serve requests with its current configuration
type ErrConfiguration struct {
	Message string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorBody maps err to the client-facing code and detail. Internal failures
// get a fixed detail so raw error text never leaks.
func errorBody(err error) (string, string) {
	var validation *ErrValidation
	if errors.As(err, &validation) {
		return codeValidation, validation.Message
	}
	var configuration *ErrConfiguration
	if errors.As(err, &configuration) {
		return codeConfiguration, configuration.Message
	}
	return codeInternal, internalErrorDetail
}

func validationError(field, format string, args ...any) error {
	return &ErrValidation{Field: field, Message: fmt.Sprintf(format, args...)}
}
