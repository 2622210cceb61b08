package webclient

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/raysh454/thamos/internal/logging"
)

// RegisterDefaultBackends registers the default nethttp backend. It runs from
// init and may be called again to restore the default after a test override.
func RegisterDefaultBackends() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		if !cfg.VerifyTLS {
			// #nosec G402 -- verification is an explicit user setting (tls_verify: false)
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}

		client := &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}

		return NewNetHTTPClient(cfg, logger, client)
	})
}
