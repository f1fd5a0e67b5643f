package fetchcore

import (
	"errors"
	"fmt"
)

// Error codes used throughout fetchcore. These map to the error kinds
// in the design: BadRequest, EngineError, ExhaustedEscalation,
// ResourceError, PoolDisconnected, Cancelled.
const (
	EINVALID          = "invalid"
	ENOTFOUND         = "not_found"
	EBADREQUEST       = "bad_request"
	EENGINE           = "engine_error"
	EEXHAUSTED        = "exhausted_escalation"
	ERESOURCE         = "resource_error"
	EPOOLDISCONNECTED = "pool_disconnected"
	ECANCELED         = "canceled"
	EINTERNAL         = "internal"
)

// Error is a structured application error carrying a stable code and
// a one-line, user-safe message. Never wraps a stack trace.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fetchcore error: code=%s message=%s", e.Code, e.Message)
}

// Errorf creates a new Error with a formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode unwraps err for its code. Non-Error errors are reported as
// EINTERNAL; a nil error returns "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps err for its user-facing message. Non-Error
// errors are reported as a generic message rather than leaking their
// internal detail.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
