package matching

import (
	"errors"
	"fmt"
)

// Kind classifies why a match request was rejected
type Kind string

// Request error kinds
const (
	// KindNotFound means the project could not be resolved
	KindNotFound Kind = "not_found"
	// KindUnprocessable means the project exists but cannot be matched, e.g. it has no embedding
	KindUnprocessable Kind = "unprocessable"
	// KindInvalid means the request parameters are out of range
	KindInvalid Kind = "invalid"
)

// RequestError is returned when a whole match request fails before any ranking is attempted
type RequestError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// KindOf returns the request error kind carried by err, or "" if there is none
func KindOf(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}

// IsNotFound reports whether err is a KindNotFound request error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsUnprocessable reports whether err is a KindUnprocessable request error
func IsUnprocessable(err error) bool {
	return KindOf(err) == KindUnprocessable
}
