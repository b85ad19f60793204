// Package apperr defines the closed set of failures the service can raise
// and the single place they are mapped to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates every failure class the API knows how to report.
type Kind int

const (
	KindValidation Kind = iota
	KindDuplicateIdentity
	KindInvalidCredentials
	KindUnauthorized
	KindNotFound
	KindServer
)

// Business error codes carried in the response envelope alongside the
// HTTP status, so clients can branch without string matching.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeDuplicate    = 40002
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Error is a tagged failure. Fields carries optional field-level validation
// messages for KindValidation.
type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports malformed or missing input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// ValidationFields reports per-field validation messages.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Msg: "invalid input", Fields: fields}
}

// DuplicateIdentity reports an email or phone already registered.
func DuplicateIdentity() *Error {
	return &Error{Kind: KindDuplicateIdentity, Msg: "user already exists with this email or phone"}
}

// InvalidCredentials reports a failed login. The message is identical for
// unknown identity and wrong password so callers cannot enumerate accounts.
func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Msg: "invalid credentials"}
}

// Unauthorized reports a missing, expired or otherwise bad token.
func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// NotFound reports an absent resource.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

// Server wraps an unexpected internal failure. The cause is kept for logs
// but never serialized to the client.
func Server(msg string, cause error) *Error {
	return &Error{Kind: KindServer, Msg: msg, cause: cause}
}

// Status maps an error to its HTTP status code. Unknown errors are treated
// as internal failures.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindDuplicateIdentity:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code maps an error to its business error code.
func Code(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return CodeServerErr
	}
	switch e.Kind {
	case KindValidation:
		return CodeInvalidParam
	case KindDuplicateIdentity:
		return CodeDuplicate
	case KindInvalidCredentials, KindUnauthorized:
		return CodeAuth
	case KindNotFound:
		return CodeNotFound
	default:
		return CodeServerErr
	}
}

// Message returns the client-facing message for an error. Internal causes
// never leak.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	return e.Msg
}

// FieldErrors returns the per-field messages, if any.
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
