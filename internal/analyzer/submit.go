package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/raysh454/thamos/internal/model"
)

// DefaultRecommendationType is used when neither the request, the runtime
// environment nor the configuration names one.
const DefaultRecommendationType = "stable"

// AdviseRequest describes an advise submission.
type AdviseRequest struct {
	Requirements     string
	RequirementsLock string

	// RuntimeEnvironment and RuntimeEnvironmentName are mutually exclusive.
	RuntimeEnvironment     *model.RuntimeEnvironment
	RuntimeEnvironmentName string

	RecommendationType string

	// Limit is sent only when set. Count defaults to 1.
	Limit *int
	Count *int

	Debug  bool
	Force  bool
	NoWait bool
}

// ProvenanceRequest describes a provenance check submission.
type ProvenanceRequest struct {
	Requirements     string
	RequirementsLock string

	Debug  bool
	Force  bool
	NoWait bool
}

// ImageAnalysisRequest describes a container image analysis submission.
type ImageAnalysisRequest struct {
	Image string

	RegistryUser     string
	RegistryPassword string

	// VerifyTLS defaults to true when nil.
	VerifyTLS *bool

	Debug  bool
	Force  bool
	NoWait bool
}

// Advise submits an application stack for a recommendation.
func (a *Analyzer) Advise(ctx context.Context, req AdviseRequest) (*Submission, error) {
	if strings.TrimSpace(req.Requirements) == "" {
		return nil, fmt.Errorf("%w: no requirements provided for advise", ErrInvalidInput)
	}
	if req.RuntimeEnvironment != nil && req.RuntimeEnvironmentName != "" {
		return nil, fmt.Errorf("%w: runtime environment and runtime environment name are mutually exclusive", ErrConflictingInput)
	}

	env := req.RuntimeEnvironment
	if env == nil {
		var err error
		env, err = a.runtimeEnvironment(req.RuntimeEnvironmentName)
		if err != nil {
			return nil, err
		}
	}

	count := req.Count
	if count == nil {
		one := 1
		count = &one
	}

	input := &model.AdviseInput{
		ApplicationStack:   a.stack(req.Requirements, req.RequirementsLock),
		RuntimeEnvironment: env.Payload(),
	}
	params := model.AdviseParameters{
		RecommendationType: a.recommendationType(req.RecommendationType, env),
		Debug:              req.Debug,
		Force:              req.Force,
		Limit:              req.Limit,
		Count:              count,
	}

	a.logger.Debug("submitting advise")
	resp, err := a.api.PostAdvisePython(ctx, input, params)
	if err != nil {
		return nil, fmt.Errorf("submit advise: %w", err)
	}
	return a.follow(ctx, KindAdvise, resp.AnalysisID, req.NoWait)
}

// ProvenanceCheck submits a locked application stack for provenance checks.
func (a *Analyzer) ProvenanceCheck(ctx context.Context, req ProvenanceRequest) (*Submission, error) {
	if strings.TrimSpace(req.Requirements) == "" {
		return nil, fmt.Errorf("%w: no requirements provided for provenance checks", ErrInvalidInput)
	}

	stack := a.stack(req.Requirements, req.RequirementsLock)
	resp, err := a.api.PostProvenancePython(ctx, &stack, model.ProvenanceParameters{
		Debug: req.Debug,
		Force: req.Force,
	})
	if err != nil {
		return nil, fmt.Errorf("submit provenance check: %w", err)
	}
	return a.follow(ctx, KindProvenanceCheck, resp.AnalysisID, req.NoWait)
}

// ImageAnalysis submits a container image for analysis.
func (a *Analyzer) ImageAnalysis(ctx context.Context, req ImageAnalysisRequest) (*Submission, error) {
	if strings.TrimSpace(req.Image) == "" {
		return nil, fmt.Errorf("%w: no image provided for analysis", ErrInvalidInput)
	}

	verifyTLS := true
	if req.VerifyTLS != nil {
		verifyTLS = *req.VerifyTLS
	}

	resp, err := a.api.PostAnalyze(ctx, model.ImageAnalysisParameters{
		Image:            req.Image,
		Debug:            req.Debug,
		Force:            req.Force,
		VerifyTLS:        verifyTLS,
		RegistryUser:     req.RegistryUser,
		RegistryPassword: req.RegistryPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("submit image analysis: %w", err)
	}
	return a.follow(ctx, KindImageAnalysis, resp.AnalysisID, req.NoWait)
}

func (a *Analyzer) stack(requirements, lock string) model.PythonStack {
	format := a.cfg.RequirementsFormat
	if format == "" {
		format = model.RequirementsFormatPipenv
	}
	return model.PythonStack{
		Requirements:       requirements,
		RequirementsLock:   lock,
		RequirementsFormat: format,
	}
}

func (a *Analyzer) runtimeEnvironment(name string) (*model.RuntimeEnvironment, error) {
	if a.cfg.Environments == nil {
		if name != "" {
			return nil, fmt.Errorf("%w: runtime environment %q is not configured", ErrInvalidInput, name)
		}
		return nil, nil
	}
	env, err := a.cfg.Environments.RuntimeEnvironment(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return env, nil
}

// recommendationType applies the precedence explicit > environment > configuration > stable.
func (a *Analyzer) recommendationType(explicit string, env *model.RuntimeEnvironment) string {
	rt := explicit
	if rt == "" && env != nil {
		rt = env.RecommendationType
	}
	if rt == "" {
		rt = a.cfg.RecommendationType
	}
	if rt == "" {
		rt = DefaultRecommendationType
	}
	return strings.ToLower(rt)
}
