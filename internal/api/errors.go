package api

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	param string
	err   error
}

func (e invalidRequestError) Error() string {
	if e.param == "" {
		return e.err.Error()
	}
	return e.param + ": " + e.err.Error()
}

func (e invalidRequestError) Unwrap() []error {
	return []error{ErrInvalidRequest, e.err}
}

func newInvalidRequest(param string, format string, args ...any) error {
	return invalidRequestError{param: param, err: fmt.Errorf(format, args...)}
}

func invalidParam(err error) string {
	var ire invalidRequestError
	if errors.As(err, &ire) {
		return ire.param
	}
	return ""
}
