package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrNotAuthorized is returned when an identity is not the owner of the
	// resource it is trying to mutate. Distinct from ErrNotFound: a missing
	// record must never be reported as an authorization failure.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering with an email that exists.
	ErrEmailTaken = errors.New("email already taken")
	// ErrNoSession is returned when a session token resolves to nothing.
	ErrNoSession = errors.New("session not found")
)

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything outside the
// taxonomy is a storage or programming failure and becomes an opaque 500:
// the detail is for the server log, never the response body.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, Message: "Page Not Found"}
	case errors.Is(err, ErrNotAuthorized):
		return &HTTPError{StatusCode: http.StatusForbidden, Message: "Not Authorized!"}
	case errors.Is(err, ErrInvalidCredentials):
		return &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Something went wrong"}
	}
}
