package api

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the backend answers with a non-success status
// or reports an error in an otherwise successful payload.
type StatusError struct {
	StatusCode int
	// Message is the server supplied error text, or the caller's default when
	// the server did not provide one.
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// TransportError wraps a request that never completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
