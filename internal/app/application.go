package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/thamos/internal/analyzer"
	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/thothapi"
)

// Application is the runtime state container shared by commands.
// Pass Application into callers that need access to configuration and the
// shared services rather than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	// Host is an explicit host that takes precedence over Config.Host.
	Host string

	// Feedback is used by every analyzer built by WithAPIClient. Nil means none.
	Feedback analyzer.Feedback

	// Recorder keeps the local analysis history. Optional.
	Recorder analyzer.Recorder
}

// NewApplication constructs an Application from the provided parts.
func NewApplication(cfg *Config, logger logging.Logger) *Application {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Application{
		Config: cfg,
		Logger: logger,
	}
}

// ClientFactory returns the factory used to reach the service.
func (a *Application) ClientFactory() *thothapi.Factory {
	return &thothapi.Factory{
		ExplicitHost:   a.Host,
		ConfiguredHost: a.Config.Host,
		Transport:      a.Config.WebClientConfig(),
		Logger:         a.Logger,
	}
}

// WithAPIClient builds a fresh API client and analyzer, runs fn with them and
// releases the client afterwards. The elapsed time is logged at debug level.
func (a *Application) WithAPIClient(ctx context.Context, fn func(ctx context.Context, an *analyzer.Analyzer) error) error {
	if a == nil {
		return errors.New("application is nil")
	}
	start := time.Now()

	client, err := a.ClientFactory().New(ctx)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			a.Logger.Warn("closing api client", logging.Field{Key: "error", Value: cerr})
		}
	}()

	opts := []analyzer.Option{analyzer.WithFeedback(a.Feedback)}
	if a.Recorder != nil {
		opts = append(opts, analyzer.WithRecorder(a.Recorder))
	}
	an := analyzer.New(client, analyzer.Config{
		RecommendationType: a.Config.RecommendationType,
		RequirementsFormat: a.Config.RequirementsFormat,
		Environments:       a.Config,
	}, a.Logger, opts...)

	err = fn(ctx, an)
	a.Logger.Debug("elapsed time processing api call",
		logging.Field{Key: "url", Value: client.BaseURL()},
		logging.Field{Key: "elapsed", Value: time.Since(start).String()})
	return err
}
