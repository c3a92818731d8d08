package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for any 401. The session has already been
	// reset when the caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx answer other than 401 and 404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}
