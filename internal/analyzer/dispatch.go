package analyzer

import (
	"context"
	"fmt"

	"github.com/raysh454/thamos/internal/model"
)

// GetLog returns the log of any analysis, selecting the endpoint by id prefix.
func (a *Analyzer) GetLog(ctx context.Context, id string) (string, error) {
	kind, err := Classify(id)
	if err != nil {
		return "", err
	}

	var resp *model.AnalysisLogResponse
	switch kind {
	case KindImageAnalysis:
		resp, err = a.api.GetAnalyzeLog(ctx, id)
	case KindProvenanceCheck:
		resp, err = a.api.GetProvenancePythonLog(ctx, id)
	case KindAdvise:
		resp, err = a.api.GetAdvisePythonLog(ctx, id)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAnalysisKind, kind)
	}
	if err != nil {
		return "", fmt.Errorf("get log of %s: %w", id, err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Log, nil
}

// GetStatus returns the status of any analysis, selecting the endpoint by id prefix.
func (a *Analyzer) GetStatus(ctx context.Context, id string) (*model.AnalysisStatus, error) {
	kind, err := Classify(id)
	if err != nil {
		return nil, err
	}
	status, err := a.statusFunc(kind)(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get status of %s: %w", id, err)
	}
	return status, nil
}

func (a *Analyzer) statusFunc(kind Kind) StatusFunc {
	var get func(context.Context, string) (*model.AnalysisStatusResponse, error)
	switch kind {
	case KindImageAnalysis:
		get = a.api.GetAnalyzeStatus
	case KindProvenanceCheck:
		get = a.api.GetProvenancePythonStatus
	case KindAdvise:
		get = a.api.GetAdvisePythonStatus
	default:
		return func(context.Context, string) (*model.AnalysisStatus, error) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAnalysisKind, kind)
		}
	}

	return func(ctx context.Context, id string) (*model.AnalysisStatus, error) {
		resp, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, nil
		}
		return resp.Status, nil
	}
}

func (a *Analyzer) resultFunc(kind Kind) ResultFunc {
	switch kind {
	case KindImageAnalysis:
		return a.api.GetAnalyze
	case KindProvenanceCheck:
		return a.api.GetProvenancePython
	case KindAdvise:
		return a.api.GetAdvisePython
	default:
		return func(context.Context, string) (*model.AnalysisResultResponse, error) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAnalysisKind, kind)
		}
	}
}
