// Package domainerrors provides coded domain errors. Services return these so
// transports can translate them into consistent responses without inspecting
// error strings. Import as dErrors.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error. The governance taxonomy maps onto these:
// validation failures are CodeValidation, authorization failures CodeForbidden,
// audit chain tampering CodeIntegrity.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_failed"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeIntegrity    Code = "integrity_violation"
	CodeInternal     Code = "internal_error"
)

// DomainError carries a code, a caller-safe message, an optional wrapped cause
// and optional structured details (e.g. a guardrail report) for the client.
type DomainError struct {
	Code    Code
	Message string
	Details any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func New(code Code, message string) error {
	return &DomainError{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) error {
	return &DomainError{Code: code, Message: message, Err: err}
}

// WithDetails attaches structured data to a new error so refusals can surface
// partial detail instead of an opaque string.
func WithDetails(code Code, message string, details any) error {
	return &DomainError{Code: code, Message: message, Details: details}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf extracts attached details, if any.
func DetailsOf(err error) any {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// ToHTTPStatus maps a code to an HTTP status for the transport layer.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeIntegrity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
