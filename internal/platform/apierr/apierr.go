package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/cashswap-backend/internal/domain"
)

// Error is what the transport layer renders: an HTTP status, a stable code and
// the message that is safe to show a client.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var errInternal = errors.New("internal error")

// FromError maps a tagged domain failure onto a status and public message.
// Store failures and untagged errors collapse to a generic 500 so no internal
// diagnostics reach the client.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	msg := domain.MessageOf(err)
	switch domain.CodeOf(err) {
	case domain.CodeValidation:
		return New(http.StatusBadRequest, "validation_error", errors.New(msg))
	case domain.CodeNotFound:
		return New(http.StatusNotFound, "not_found", errors.New(msg))
	case domain.CodeUnauthorized:
		return New(http.StatusUnauthorized, "unauthorized", errors.New(msg))
	case domain.CodeForbidden:
		return New(http.StatusForbidden, "forbidden", errors.New(msg))
	case domain.CodeConflict:
		return New(http.StatusConflict, "conflict", errors.New(msg))
	case domain.CodeRateLimited:
		return New(http.StatusTooManyRequests, "rate_limited", errors.New(msg))
	default:
		return New(http.StatusInternalServerError, "store_error", errInternal)
	}
}

// Internal reports whether the error is one the server should log at error level.
func (e *Error) Internal() bool {
	return e != nil && e.Status >= http.StatusInternalServerError
}
