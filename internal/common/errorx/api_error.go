package errorx

import (
	"fmt"
	"maps"
	"net/http"
)

// ErrorCategory represents different categories of backend errors
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryInternal   ErrorCategory = "internal"
	CategoryExternal   ErrorCategory = "external"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// APIError is a structured error returned by the development backend
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"error"`
	Category   ErrorCategory  `json:"category"`
	Severity   Severity       `json:"-"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	TraceID    string         `json:"trace_id,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

func (e *APIError) clone() *APIError {
	c := *e
	c.Details = maps.Clone(e.Details)
	return &c
}

// WithDetail returns a copy of the error carrying an extra detail
func (e *APIError) WithDetail(key string, value any) *APIError {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]any)
	}
	c.Details[key] = value
	return c
}

// WithMessage returns a copy of the error with a different message
func (e *APIError) WithMessage(msg string) *APIError {
	c := e.clone()
	c.Message = msg
	return c
}

var (
	// Validation Errors (E1000-E1999)
	ErrInvalidInput = &APIError{
		Code:       "E1001",
		Message:    "Invalid input provided",
		Category:   CategoryValidation,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingField = &APIError{
		Code:       "E1002",
		Message:    "Required field is missing",
		Category:   CategoryValidation,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusBadRequest,
	}

	// Not Found Errors (E4000-E4999)
	ErrEndpointNotFound = &APIError{
		Code:       "E4001",
		Message:    "API endpoint not found",
		Category:   CategoryNotFound,
		Severity:   SeverityInfo,
		HTTPStatus: http.StatusNotFound,
	}

	// Server Errors (E5000-E5999)
	ErrInternalServer = &APIError{
		Code:       "E5001",
		Message:    "Internal server error occurred",
		Category:   CategoryInternal,
		Severity:   SeverityCritical,
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrDatabaseError = &APIError{
		Code:       "E5002",
		Message:    "Database operation failed",
		Category:   CategoryInternal,
		Severity:   SeverityCritical,
		HTTPStatus: http.StatusInternalServerError,
	}

	// External Service Errors (E6000-E6999)
	ErrAnswererFailed = &APIError{
		Code:       "E6001",
		Message:    "Answer generation failed",
		Category:   CategoryExternal,
		Severity:   SeverityError,
		HTTPStatus: http.StatusBadGateway,
	}
)

// ValidationError creates a validation error naming the offending field
func ValidationError(field string, reason string) *APIError {
	return ErrInvalidInput.WithDetail("field", field).WithDetail("reason", reason)
}

