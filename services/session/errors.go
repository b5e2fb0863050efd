package session

import (
	"errors"
	"fmt"
)

// NotAuthenticatedError means there is no session at all; the user must start the OAuth flow.
type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string {
	return "not authenticated"
}

// SessionExpiredError means the session could not be renewed; the user must reconnect.
type SessionExpiredError struct {
	Cause error
}

func (e *SessionExpiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session expired, please reconnect: %s", e.Cause)
	}
	return "session expired, please reconnect"
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Cause
}

// AuthExchangeError means the provider rejected an authorization code.
type AuthExchangeError struct {
	StatusCode int
	Body       string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("failed to exchange code for token (%d): %s", e.StatusCode, e.Body)
}

// RefreshError means the provider rejected a refresh token.
type RefreshError struct {
	StatusCode int
	Body       string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("failed to refresh token (%d): %s", e.StatusCode, e.Body)
}

// NetworkError means the provider (or the forwarder in front of it) could not be reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NeedsReauth tells whether err can only be resolved by logging in again, as opposed to
// transient failures that are worth a retry.
func NeedsReauth(err error) bool {
	var notAuthenticated *NotAuthenticatedError
	var expired *SessionExpiredError
	return errors.As(err, &notAuthenticated) || errors.As(err, &expired)
}
