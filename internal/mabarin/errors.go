package mabarin

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by an APIError carrying a 401; the bearer
	// token is missing or expired.
	ErrUnauthorized = errors.New("mabarin: unauthorized")

	// ErrNotFound is matched by an APIError carrying a 404.
	ErrNotFound = errors.New("mabarin: not found")
)

// APIError is a well-formed upstream reply that reports failure, either
// through a non-2xx status or a false success flag.  Message is meant for the
// end user.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, http.StatusText(e.Status))
}

// Is lets callers test errors.Is(err, ErrUnauthorized) without inspecting
// status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// DecodeError means the reply could not be mapped onto the expected schema.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("%s: decode: %v", e.Endpoint, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// UserMessage picks the text to show for err: the upstream message when
// there is one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
