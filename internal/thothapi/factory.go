package thothapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/webclient"
)

// DefaultHost is used when neither an explicit nor a configured host is given.
const DefaultHost = "localhost"

const apiPath = "/api/v1"

// Factory builds a fresh Client per top-level call.
type Factory struct {
	// ExplicitHost comes from the command line or THAMOS_HOST and wins over ConfiguredHost.
	ExplicitHost string

	// ConfiguredHost is the "host" entry of the configuration file.
	ConfiguredHost string

	// Transport selects the web client backend, TLS verification and retries.
	Transport webclient.Config

	Logger logging.Logger
}

// Host returns the host the factory connects to.
func (f *Factory) Host() string {
	if h := strings.TrimSpace(f.ExplicitHost); h != "" {
		return h
	}
	if h := strings.TrimSpace(f.ConfiguredHost); h != "" {
		return h
	}
	return DefaultHost
}

// New resolves the host, discovers the API root and returns a ready Client.
// The caller owns the Client and must Close it.
func (f *Factory) New(ctx context.Context) (*Client, error) {
	logger := f.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	wc, err := webclient.NewWebClient(f.Transport, logger)
	if err != nil {
		return nil, fmt.Errorf("create web client: %w", err)
	}

	baseURL, err := Discover(ctx, wc, f.Host(), logger)
	if err != nil {
		_ = wc.Close()
		return nil, err
	}

	logger.Debug("using user api", logging.Field{Key: "url", Value: baseURL})
	return NewClient(wc, baseURL, logger), nil
}

// Discover probes the API root on host and returns the first candidate URL that
// answers 200. Hosts without a scheme are tried over https first, then http.
func Discover(ctx context.Context, wc webclient.WebClient, host string, logger logging.Logger) (string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var lastErr error
	for _, candidate := range candidateURLs(host) {
		resp, err := wc.Get(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.Debug("api discovery candidate failed",
				logging.Field{Key: "url", Value: candidate},
				logging.Field{Key: "error", Value: err.Error()})
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return candidate, nil
		}
		logger.Debug("api discovery candidate rejected",
			logging.Field{Key: "url", Value: candidate},
			logging.Field{Key: "status", Value: resp.StatusCode})
		lastErr = fmt.Errorf("unexpected status %s", resp.Status)
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w on host %q: %v", ErrAPIDiscovery, host, lastErr)
	}
	return "", fmt.Errorf("%w on host %q", ErrAPIDiscovery, host)
}

func candidateURLs(host string) []string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	host = strings.TrimSuffix(host, apiPath)

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return []string{host + apiPath}
	}
	return []string{
		"https://" + host + apiPath,
		"http://" + host + apiPath,
	}
}
