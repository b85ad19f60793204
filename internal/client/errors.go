package client

import "fmt"

// NetworkError means no HTTP response was received at all: the server is
// unreachable or the request timed out. Callers surface it as "cannot reach
// server" and must not retry automatically.
type NetworkError struct {
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out: %v", e.Err)
	}
	return fmt.Sprintf("cannot reach server: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is an HTTP error response the server did produce, carrying its
// status and the envelope's business code and message.
type APIError struct {
	Status  int
	Code    int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 API response.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == 401
}
