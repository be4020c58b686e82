package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access forbidden")

	// ErrTokenInvalid is returned when a token is missing, expired, revoked or rejected by the server.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrStorageCorrupt marks a stored profile that could not be parsed.
	// It is logged by the session store and never surfaced to UI callers.
	ErrStorageCorrupt = errors.New("stored profile is corrupt")

	// ErrSubmitInProgress rejects a second submission from a form whose request is still running.
	ErrSubmitInProgress = errors.New("a request is already in progress")
)

// NetworkMessage is what users see when the server cannot be reached.
const NetworkMessage = "Unable to reach the server. Please try again."

// ValidationError is a client-side field check that failed before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// NetworkError is a transport failure (DNS, refused connection, timeout),
// distinct from an HTTP-level rejection.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthRejectedError is a non-success HTTP response. Message is already
// normalized to readable text.
type AuthRejectedError struct {
	Status  int
	Message string
}

func (e *AuthRejectedError) Error() string {
	return e.Message
}

// Message flattens any auth error into the single line shown inline by a form.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return NetworkMessage
	}
	var re *AuthRejectedError
	if errors.As(err, &re) {
		return re.Message
	}

	switch {
	case errors.Is(err, ErrTokenInvalid):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrSubmitInProgress):
		return "Please wait for the current request to finish."
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error occurred"
}
