// Package errors provides the coded errors shared by the bracketview CLI,
// the HTTP API and the upstream client.
//
// Every error that crosses a package boundary towards a user carries a
// [Code]. The CLI picks its exit status from the code and the API picks the
// HTTP status from it, so both surfaces agree on what went wrong.
//
// # Error Codes
//
//   - INVALID_*: a flag, query parameter or file the caller supplied
//   - MALFORMED_TOPOLOGY: match data that cannot form a single bracket
//   - NOT_FOUND, FILE_NOT_FOUND: missing championship or file
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: the upstream match API failed
//   - UNAUTHORIZED, FORBIDDEN: the upstream rejected our token
//   - INTERNAL_ERROR, UNSUPPORTED
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid championship id: %d", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch championship %d", id)
//	if errors.Temporary(err) {
//	    // try again on the next poll
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidTheme  Code = "INVALID_THEME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeMalformedTopology Code = "MALFORMED_TOPOLOGY"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Upstream failures.
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeRateLimited  Code = "RATE_LIMITED"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeForbidden    Code = "FORBIDDEN"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with the given code that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's tree has the given code.
// It sees through fmt.Errorf("%w") and errors.Join.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the first *Error in err's tree, or "" if
// there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without the code prefix,
// or err.Error() for any other error.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Temporary reports whether err is an upstream failure that may succeed if
// the same request is made again later.
func Temporary(err error) bool {
	switch GetCode(err) {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited:
		return true
	}
	return false
}

// CodeForStatus maps an upstream HTTP status to the code reported to our own
// callers. Statuses below 400 map to "".
func CodeForStatus(status int) Code {
	switch {
	case status < 400:
		return ""
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status >= 500:
		return ErrCodeNetwork
	default:
		return ErrCodeInvalidInput
	}
}
