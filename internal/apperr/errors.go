package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies request failures for status mapping and logs.
type Code string

const (
	CodeValidation     Code = "validation"
	CodeAuthentication Code = "authentication"
	CodeConfiguration  Code = "configuration"
	CodeStorage        Code = "storage"
	CodeUpstreamFetch  Code = "upstream_fetch"
)

// Error carries a classified failure plus the message that is safe to return to callers.
// Wrapped driver or provider errors stay server side.
type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a malformed or incomplete request payload.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// Authentication reports a missing or failed signature check. Missing credentials
// map to 400, refused ones to 401; the caller picks the status.
func Authentication(status int, message string) *Error {
	return &Error{Code: CodeAuthentication, Status: status, Message: message}
}

// Configuration reports a required setting that is absent at the point of use.
func Configuration(message string) *Error {
	return &Error{Code: CodeConfiguration, Status: http.StatusInternalServerError, Message: message}
}

// Storage wraps a persistence failure. The message is what callers see; err is for logs only.
func Storage(message string, err error) *Error {
	return &Error{Code: CodeStorage, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// UpstreamFetch wraps an identity-provider lookup failure. It is recovered where it
// occurs and never mapped to a response status.
func UpstreamFetch(err error) *Error {
	return &Error{Code: CodeUpstreamFetch, Status: http.StatusInternalServerError, Message: "identity provider lookup failed", Err: err}
}

// StatusCode resolves the HTTP status for an error, defaulting to 500.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// ClientMessage resolves the caller-safe message for an error. Unclassified
// errors get a generic message so driver detail never leaks.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
