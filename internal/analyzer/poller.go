package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
)

const (
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
)

// StatusFunc fetches the current status of an analysis.
type StatusFunc func(ctx context.Context, id string) (*model.AnalysisStatus, error)

// Poller waits for analyses to finish using exponential backoff with a ceiling.
// There is no iteration limit; callers bound the wait through ctx.
type Poller struct {
	Initial time.Duration
	Max     time.Duration

	// Sleep suspends for d or until ctx is done. Nil means a timer based sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger logging.Logger
}

// NewPoller returns a Poller with the default 500ms..10s schedule.
func NewPoller(logger logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Poller{
		Initial: DefaultInitialInterval,
		Max:     DefaultMaxInterval,
		Logger:  logger.With(logging.Field{Key: "component", Value: "poller"}),
	}
}

// Poll fetches the status of id until it reports a finish time and returns
// that final status. Fetch errors abort polling immediately.
func (p *Poller) Poll(ctx context.Context, fetch StatusFunc, id string, fb Feedback) (*model.AnalysisStatus, error) {
	if fb == nil {
		fb = NullFeedback{}
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	interval := p.Initial
	if interval <= 0 {
		interval = DefaultInitialInterval
	}
	ceiling := p.Max
	if ceiling <= 0 {
		ceiling = DefaultMaxInterval
	}

	fb.Start(id)
	defer fb.Stop()

	for {
		status, err := fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch status of %s: %w", id, err)
		}
		if status.Finished() {
			return status, nil
		}

		state := ""
		if status != nil {
			state = status.State
		}
		logger.Debug("analysis not finished yet",
			logging.Field{Key: "analysis_id", Value: id},
			logging.Field{Key: "state", Value: state},
			logging.Field{Key: "sleep", Value: interval.String()})

		fb.Waiting(id, interval)
		if err := sleep(ctx, interval); err != nil {
			return nil, fmt.Errorf("wait for %s: %w", id, err)
		}
		interval = min(interval*2, ceiling)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
