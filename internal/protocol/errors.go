package protocol

import (
	"errors"
	"fmt"
)

// -- Error Types --

// RequestError is returned when an inbound payload cannot be mapped to a conversation.
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}
func (e *RequestError) Unwrap() error { return ErrInvalidRequest }

// -- Sentinels --

var ErrInvalidRequest = errors.New("invalid request")
