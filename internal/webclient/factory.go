package webclient

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/raysh454/thamos/internal/logging"
)

// ErrUnknownBackend is returned when the configured transport backend was never registered.
var ErrUnknownBackend = errors.New("unknown webclient backend")

// BackendConstructor builds a WebClient for one transport backend.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendConstructor{}
)

func init() {
	RegisterDefaultBackends()
}

func backendName(c Client) string {
	name := strings.ToLower(strings.TrimSpace(string(c)))
	if name == "" {
		return string(ClientNetHTTP)
	}
	return name
}

// RegisterBackend makes ctor available under name, case-insensitively. A later
// registration under the same name replaces the earlier one.
func RegisterBackend(name string, ctor BackendConstructor) {
	if strings.TrimSpace(name) == "" || ctor == nil {
		return
	}
	backendsMu.Lock()
	backends[backendName(Client(name))] = ctor
	backendsMu.Unlock()
}

// NewWebClient builds the transport selected by cfg.Client, nethttp when unset.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	name := backendName(cfg.Client)

	backendsMu.RLock()
	ctor := backends[name]
	backendsMu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("%w %q, registered: %s", ErrUnknownBackend, name, strings.Join(ListBackends(), ", "))
	}

	wc, err := ctor(cfg, logger)
	switch {
	case err != nil:
		return nil, fmt.Errorf("build %s transport: %w", name, err)
	case wc == nil:
		return nil, fmt.Errorf("build %s transport: constructor returned no client", name)
	}
	return wc, nil
}

// ListBackends returns the registered backend names in order.
func ListBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return slices.Sorted(maps.Keys(backends))
}
