package loco

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for requests issued on, or interrupted by, a closed connection.
var ErrClosed = errors.New("loco: connection closed")

// RequestError is a request the gateway answered with a non-zero status.
type RequestError struct {
	Method string
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("loco: %s rejected with status %d", e.Method, e.Status)
}

// IsRequestError reports whether err, or anything it wraps, is a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}
