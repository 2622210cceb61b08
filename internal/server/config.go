package server

import "github.com/raysh454/thamos/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// PendingPolls is the number of unfinished statuses every analysis reports
	// before it finishes.
	PendingPolls int

	// RateLimit is the number of requests per second accepted; zero disables limiting.
	RateLimit float64
	Burst     int

	// Deployment is reported by the API root.
	Deployment string

	Logger logging.Logger
}

// DefaultConfig returns the settings used by cmd/demoserver.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":8080",
		PendingPolls: 3,
		Deployment:   "demo",
	}
}
