package analyzer

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Feedback receives progress notifications from a Poller. Implementations
// must not block; they have no influence on polling.
type Feedback interface {
	// Start is called once before the first status fetch.
	Start(id string)

	// Waiting is called once per wait cycle with the upcoming sleep interval.
	Waiting(id string, next time.Duration)

	// Stop is called once when polling ends, successfully or not.
	Stop()
}

// NullFeedback discards all notifications.
type NullFeedback struct{}

func (NullFeedback) Start(string)                  {}
func (NullFeedback) Waiting(string, time.Duration) {}
func (NullFeedback) Stop()                         {}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressFeedback renders a single-line spinner with the elapsed time.
type ProgressFeedback struct {
	mu      sync.Mutex
	w       io.Writer
	frame   int
	started time.Time
	active  bool
	accent  *color.Color
	now     func() time.Time
}

// NewProgressFeedback writes progress to w, typically os.Stderr.
func NewProgressFeedback(w io.Writer) *ProgressFeedback {
	return &ProgressFeedback{
		w:      w,
		accent: color.New(color.FgCyan),
		now:    time.Now,
	}
}

func (p *ProgressFeedback) Start(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = p.now()
	p.frame = 0
	p.active = true
	p.render(id)
}

func (p *ProgressFeedback) Waiting(id string, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	p.frame = (p.frame + 1) % len(spinnerFrames)
	p.render(id)
}

func (p *ProgressFeedback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	p.active = false
	fmt.Fprint(p.w, "\r\033[K")
}

func (p *ProgressFeedback) render(id string) {
	elapsed := p.now().Sub(p.started).Truncate(time.Second)
	fmt.Fprintf(p.w, "\r\033[K%s waiting for %s (%s)", p.accent.Sprint(spinnerFrames[p.frame]), id, elapsed)
}

// SelectFeedback picks the feedback for one call. Progress is never shown in
// debug mode since it would interleave with log output.
func SelectFeedback(enabled, debug bool, w io.Writer) Feedback {
	if !enabled || debug || w == nil {
		return NullFeedback{}
	}
	return NewProgressFeedback(w)
}
