package arxiv

import (
	"errors"
	"fmt"
)

// Common errors returned by the arXiv client.
var (
	// ErrNotFound indicates no paper matched the requested id.
	ErrNotFound = errors.New("not found on arXiv")

	// ErrRateLimited indicates the API asked us to slow down.
	ErrRateLimited = errors.New("arXiv rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with arXiv")

	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("empty arXiv query")

	// ErrInvalidResponse indicates a body that is not a readable Atom feed.
	ErrInvalidResponse = errors.New("invalid response from arXiv")
)

// APIError is an HTTP failure or an error entry reported inside the feed.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arXiv API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound returns true if the error indicates a paper was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode == 503
	}
	return false
}
