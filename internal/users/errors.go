package users

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRequestFailed matches every transport and server failure.
	ErrRequestFailed = errors.New("users request failed")

	ErrEmailTaken    = errors.New("email is already registered")
	ErrNoAccessToken = errors.New("no access token configured - set FOLIO_ACCESS_TOKEN")
	ErrNotFound      = errors.New("user not found")
	ErrConflict      = errors.New("users API reports a conflict")
)

// TransportError reports a request that never produced a usable HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: users API unreachable - check your connection and api_url: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrRequestFailed }

// ServerError reports a non-2xx response. Message is the backend's own
// explanation, when it sent one.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := statusMessage(e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return target == ErrRequestFailed
}

// IsTransport reports whether err came from the network rather than the API.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func statusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusConflict:
		return ErrConflict.Error()
	case http.StatusBadRequest:
		return "users API rejected the request"
	case http.StatusUnauthorized:
		return "users API authentication failed - check FOLIO_ACCESS_TOKEN"
	case http.StatusForbidden:
		return "users API access denied - you can only change your own account"
	case http.StatusNotFound:
		return ErrNotFound.Error()
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "users API server error - please try again later"
	default:
		return fmt.Sprintf("users API error (status %d) - please try again", statusCode)
	}
}
