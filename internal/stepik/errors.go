package stepik

import (
	"errors"
	"fmt"
)

// AuthError wraps a failed token exchange. It is never retried internally;
// the caller aborts the current run and the next trigger retries wholesale.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("stepik auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// HTTPError is any non-success response from the platform API.
type HTTPError struct {
	Status int
	URL    string
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("stepik api request failed with status %d: %s", e.Status, e.URL)
}

// IsAuthError checks if error represents a failed token exchange.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsHTTPError checks if error represents a non-success API response.
func IsHTTPError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}
