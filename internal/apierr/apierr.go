package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Code    string
	Err     error
	Details any
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

func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Err: fmt.Errorf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Err: fmt.Errorf(format, args...)}
}

func ValidationWithDetails(details any, format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Err: fmt.Errorf(format, args...), Details: details}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Err: fmt.Errorf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Err: fmt.Errorf(format, args...)}
}

// From pulls an *Error out of an error chain so handlers can map
// service failures onto transport status codes.
func From(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
