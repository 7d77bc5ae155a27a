package errors

import (
	"fmt"
	"time"
)

// Error codes used across the service.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeLookupNotFound   = "LOOKUP_NOT_FOUND"
	CodeRemoteCallFailed = "REMOTE_CALL_FAILED"
	CodeRemoteRejected   = "REMOTE_REJECTED"
	CodeInternal         = "INTERNAL_ERROR"
)

// StandardError is the error type returned by all packages in this
// repository. Metadata carries machine-readable context; for remote
// rejections it holds the raw response payload.
type StandardError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause records the underlying error for errors.Is/As chains.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	if err != nil && e.Details == "" {
		e.Details = err.Error()
	}
	return e
}

func newError(code, message string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError reports malformed or unusable input. Never retryable.
func NewValidationError(message string) *StandardError {
	return newError(CodeValidationFailed, message, false)
}

// NewLookupNotFoundError reports a failed catalog or cache lookup.
func NewLookupNotFoundError(message string) *StandardError {
	return newError(CodeLookupNotFound, message, false)
}

// NewRemoteCallError reports a transport-level failure talking to the CRM.
func NewRemoteCallError(message string) *StandardError {
	return newError(CodeRemoteCallFailed, message, true)
}

// NewRemoteRejectedError reports a CRM response whose envelope code is not
// a success code. The raw payload goes into Metadata under "response".
func NewRemoteRejectedError(message string, payload interface{}) *StandardError {
	e := newError(CodeRemoteRejected, message, true)
	if payload != nil {
		e.WithMetadata("response", payload)
	}
	return e
}

// NewInternalError reports a programming or environment fault.
func NewInternalError(message string) *StandardError {
	return newError(CodeInternal, message, false)
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code string) bool {
	se, ok := err.(*StandardError)
	return ok && se.Code == code
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	se, ok := err.(*StandardError)
	return ok && se.Retryable
}
