package analyzer

import (
	"context"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
)

// API is the subset of the User API the analyzer uses. *thothapi.Client implements it.
type API interface {
	PostAdvisePython(ctx context.Context, input *model.AdviseInput, params model.AdviseParameters) (*model.AnalysisResponse, error)
	GetAdvisePython(ctx context.Context, id string) (*model.AnalysisResultResponse, error)
	GetAdvisePythonStatus(ctx context.Context, id string) (*model.AnalysisStatusResponse, error)
	GetAdvisePythonLog(ctx context.Context, id string) (*model.AnalysisLogResponse, error)

	PostProvenancePython(ctx context.Context, stack *model.PythonStack, params model.ProvenanceParameters) (*model.AnalysisResponse, error)
	GetProvenancePython(ctx context.Context, id string) (*model.AnalysisResultResponse, error)
	GetProvenancePythonStatus(ctx context.Context, id string) (*model.AnalysisStatusResponse, error)
	GetProvenancePythonLog(ctx context.Context, id string) (*model.AnalysisLogResponse, error)

	PostAnalyze(ctx context.Context, params model.ImageAnalysisParameters) (*model.AnalysisResponse, error)
	GetAnalyze(ctx context.Context, id string) (*model.AnalysisResultResponse, error)
	GetAnalyzeStatus(ctx context.Context, id string) (*model.AnalysisStatusResponse, error)
	GetAnalyzeLog(ctx context.Context, id string) (*model.AnalysisLogResponse, error)
}

// EnvironmentLookup resolves configured runtime environments. An empty name
// selects the first configured entry; nil is returned when there is none.
type EnvironmentLookup interface {
	RuntimeEnvironment(name string) (*model.RuntimeEnvironment, error)
}

// Recorder keeps a history of submitted analyses.
type Recorder interface {
	RecordSubmission(ctx context.Context, analysisID, kind string) error
	MarkFinished(ctx context.Context, analysisID, outcome string) error
}

// Config holds the defaults applied to submissions.
type Config struct {
	// RecommendationType is the configured default; "stable" when empty.
	RecommendationType string

	// RequirementsFormat is sent with application stacks; "pipenv" when empty.
	RequirementsFormat string

	// Environments resolves runtime environments by name. Optional.
	Environments EnvironmentLookup
}

// Analyzer submits analyses and follows them until a result is available.
type Analyzer struct {
	api      API
	cfg      Config
	poller   *Poller
	feedback Feedback
	recorder Recorder
	logger   logging.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithFeedback sets the progress feedback used while polling.
func WithFeedback(fb Feedback) Option {
	return func(a *Analyzer) {
		if fb != nil {
			a.feedback = fb
		}
	}
}

// WithRecorder records every submission.
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// WithPoller replaces the default poller.
func WithPoller(p *Poller) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.poller = p
		}
	}
}

// New returns an Analyzer talking to api.
func New(api API, cfg Config, logger logging.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &Analyzer{
		api:      api,
		cfg:      cfg,
		poller:   NewPoller(logger),
		feedback: NullFeedback{},
		logger:   logger.With(logging.Field{Key: "component", Value: "analyzer"}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
