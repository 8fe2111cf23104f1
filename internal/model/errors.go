package model

import (
	"fmt"
	"net/http"
)

// ErrorCode is the machine readable code returned to API clients
type ErrorCode string

const (
	CodeCityTooShort   ErrorCode = "CITY_TOO_SHORT"
	CodeCityNotFound   ErrorCode = "CITY_NOT_FOUND"
	CodeCoordsRequired ErrorCode = "COORDS_REQUIRED"
	CodeInvalidCoords  ErrorCode = "INVALID_COORDS"
	CodeInvalidPlace   ErrorCode = "INVALID_PLACE"
	CodeFetchFailed    ErrorCode = "FETCH_FAILED"
)

// Error is a typed failure of a primary lookup. Err keeps the cause for logging only.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the code to an HTTP status
func (e *Error) Status() int {
	switch e.Code {
	case CodeCityTooShort, CodeCoordsRequired, CodeInvalidCoords, CodeInvalidPlace:
		return http.StatusBadRequest
	case CodeCityNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Kind is the short lowercase error name used in the response body
func (e *Error) Kind() string {
	switch e.Code {
	case CodeCityTooShort, CodeCoordsRequired, CodeInvalidCoords, CodeInvalidPlace:
		return "invalid"
	case CodeCityNotFound:
		return "not_found"
	default:
		return "fetch_failed"
	}
}

// NewError builds a typed error
func NewError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Err: err}
}

// ErrorResponse is the body written for a failed primary lookup
type ErrorResponse struct {
	Error     string    `json:"error"`
	ErrorCode ErrorCode `json:"errorCode"`
	Message   string    `json:"message,omitempty"`
}
