package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

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

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

func Conflict(code, msg string) *Error {
	return New(http.StatusConflict, code, errors.New(msg))
}

func BadInput(code, msg string) *Error {
	return New(http.StatusBadRequest, code, errors.New(msg))
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// StatusOf reports the HTTP status carried by err, or 0 when err is not classified.
func StatusOf(err error) int {
	if ae, ok := As(err); ok {
		return ae.Status
	}
	return 0
}
