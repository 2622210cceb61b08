package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config is the minimal set of options required for constructing a WebClient.
// It is filled from app.Config by the client factory without creating an import cycle.
type Config struct {
	Client Client

	// Timeout bounds a single request. Zero means 30s.
	Timeout time.Duration

	// VerifyTLS disables certificate verification when false.
	VerifyTLS bool

	// Retries is the number of extra attempts for idempotent requests that fail
	// before a response is received. Zero disables retrying.
	Retries uint

	// RetryDelay is the initial backoff between attempts. Zero means 500ms.
	RetryDelay time.Duration
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Client:     ClientNetHTTP,
		Timeout:    30 * time.Second,
		VerifyTLS:  true,
		RetryDelay: 500 * time.Millisecond,
	}
}
