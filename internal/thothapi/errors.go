package thothapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrAPIDiscovery is returned when no User API endpoint answers on the configured host.
var ErrAPIDiscovery = errors.New("unable to discover User API")

// APIError is returned for every non-2xx response of the User API.
type APIError struct {
	StatusCode int
	Reason     string
	Body       []byte
}

func (e *APIError) Error() string {
	if msg := e.ErrorMessage(); msg != "" {
		return fmt.Sprintf("user api: %s: %s", e.Reason, msg)
	}
	return fmt.Sprintf("user api: %s", e.Reason)
}

// ErrorMessage returns the "error" field of a JSON error body, or "" when the
// body is not a structured error.
func (e *APIError) ErrorMessage() string {
	if len(e.Body) == 0 {
		return ""
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	return body.Error
}

// DomainFailure reports whether the server reported that the analysis itself
// failed, as opposed to a transport or service problem. Rate limiting and 5xx
// responses are never domain failures, even when they carry a JSON error body,
// so callers see them as errors instead of as an analysis without a result.
func (e *APIError) DomainFailure() bool {
	if e.StatusCode < 400 || e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests {
		return false
	}
	return e.ErrorMessage() != ""
}
