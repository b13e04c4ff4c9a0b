package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrServerUnavailable is returned when the Git server answers with a 5xx
// status or 429. Compare with errors.Is.
var ErrServerUnavailable = errors.New("server unavailable")

// ErrRepositoryNotFound is returned when the repository does not exist
// (HTTP 404).
var ErrRepositoryNotFound = errors.New("repository not found")

// ServerUnavailableError provides structured information about a Git server
// that is unavailable.
type ServerUnavailableError struct {
	// StatusCode is the HTTP status code (5xx or 429).
	StatusCode int
	// Operation is the HTTP method that failed.
	Operation string
	// Underlying is the underlying error.
	Underlying error
}

func (e *ServerUnavailableError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("server unavailable (operation %s, status code %d): %v", e.Operation, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("server unavailable (status code %d): %v", e.StatusCode, e.Underlying)
}

func (e *ServerUnavailableError) Unwrap() error {
	return e.Underlying
}

// Is enables errors.Is compatibility with ErrServerUnavailable.
func (e *ServerUnavailableError) Is(target error) bool {
	return target == ErrServerUnavailable
}

// NewServerUnavailableError creates a ServerUnavailableError. Operation can
// be empty if the HTTP method is unknown.
func NewServerUnavailableError(operation string, statusCode int, underlying error) *ServerUnavailableError {
	return &ServerUnavailableError{
		Operation:  operation,
		StatusCode: statusCode,
		Underlying: underlying,
	}
}

// RepositoryNotFoundError provides structured information about a missing
// remote repository.
type RepositoryNotFoundError struct {
	StatusCode int
	Operation  string
	Endpoint   string
	Underlying error
}

func (e *RepositoryNotFoundError) Error() string {
	return fmt.Sprintf("repository not found (operation %s, endpoint %s, status code %d): %v",
		e.Operation, e.Endpoint, e.StatusCode, e.Underlying)
}

func (e *RepositoryNotFoundError) Unwrap() error {
	return e.Underlying
}

func (e *RepositoryNotFoundError) Is(target error) bool {
	return target == ErrRepositoryNotFound
}

// NewRepositoryNotFoundError creates a RepositoryNotFoundError.
func NewRepositoryNotFoundError(operation, endpoint string, underlying error) *RepositoryNotFoundError {
	return &RepositoryNotFoundError{
		Operation:  operation,
		Endpoint:   endpoint,
		StatusCode: http.StatusNotFound,
		Underlying: underlying,
	}
}

// checkResponseStatus maps a non-2xx response to a typed error. The caller
// is responsible for closing the response body.
func checkResponseStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	operation := ""
	endpoint := ""
	if res.Request != nil {
		operation = res.Request.Method
		endpoint = extractEndpoint(res.Request.URL.Path)
	}
	underlying := fmt.Errorf("got status code %d: %s", res.StatusCode, res.Status)

	switch {
	case res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests:
		return NewServerUnavailableError(operation, res.StatusCode, underlying)
	case res.StatusCode == http.StatusNotFound:
		return NewRepositoryNotFoundError(operation, endpoint, underlying)
	default:
		return underlying
	}
}

// extractEndpoint extracts the Git protocol endpoint from a URL path.
// Returns "git-upload-pack", "info/refs", or "unknown".
func extractEndpoint(path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if strings.Contains(path, "git-upload-pack") {
		return "git-upload-pack"
	}
	if strings.Contains(path, "info/refs") {
		return "info/refs"
	}
	return "unknown"
}
