package api

import (
	"errors"
	"fmt"
)

// ErrTransport covers everything where no usable answer came back: the
// request failed, or the body could not be decoded.
var ErrTransport = errors.New("api unreachable")

// ServerError is a non-2xx answer. Message is whatever the API put in its
// "message" field and may be empty.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// MessageOr returns the server message, or fallback when there is none.
func (e *ServerError) MessageOr(fallback string) string {
	if e.Message == "" {
		return fallback
	}
	return e.Message
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
}
