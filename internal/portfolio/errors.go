package portfolio

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFetchFailed matches every transport and server failure.
	ErrFetchFailed = errors.New("portfolio fetch failed")

	ErrUnknownCategory = errors.New("unknown category")
	ErrNotFound        = errors.New("portfolio not found")
)

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: portfolio API unreachable - check your connection and api_url: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrFetchFailed }

// ServerError reports a non-2xx response.
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
	if target == ErrNotFound {
		return e.StatusCode == http.StatusNotFound
	}
	return target == ErrFetchFailed
}

func statusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "portfolio API rejected the request - check category and filter"
	case http.StatusUnauthorized:
		return "portfolio API authentication failed - check your access_token"
	case http.StatusForbidden:
		return "portfolio API access denied"
	case http.StatusNotFound:
		return "portfolio not found"
	case http.StatusTooManyRequests:
		return "portfolio API rate limit exceeded - please try again later"
	case http.StatusServiceUnavailable:
		return "portfolio API temporarily unavailable - please try again in a few minutes"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return "portfolio API server error - please try again later"
	default:
		return fmt.Sprintf("portfolio API error (status %d) - please try again", statusCode)
	}
}
