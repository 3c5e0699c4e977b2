package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for HTTP 401 responses. Callers surface a
// single consistent "please refresh your session" message for it.
var ErrUnauthorized = errors.New("unauthorized: please refresh your session")

// Error is an application-level failure: the service answered 2xx but with
// success=false. Message carries the server-provided text, if any.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "search service reported a failure"
	}
	return e.Message
}

// TransportError wraps network and non-2xx HTTP failures, which are kept
// distinct from application errors so callers can word retry messages
// differently.
type TransportError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsApplicationError reports whether err is a success=false service reply
func IsApplicationError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
