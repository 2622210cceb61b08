package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
)

// State is the outcome of a submission as seen by the caller.
type State int

const (
	// StateSubmitted means the analysis was submitted without waiting for it.
	StateSubmitted State = iota + 1

	// StateResultAvailable means the analysis finished and its result was retrieved.
	StateResultAvailable

	// StateResultAbsent means the analysis finished but the service reported a failure.
	StateResultAbsent
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StateResultAvailable:
		return "result-available"
	case StateResultAbsent:
		return "result-absent"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Submission is returned by every submitter.
type Submission struct {
	AnalysisID string
	Kind       Kind
	State      State

	// Status is the final status seen by the poller. Nil for StateSubmitted.
	Status *model.AnalysisStatus

	// Report and Error are set for advises and provenance checks.
	Report json.RawMessage
	Error  json.RawMessage

	// Result is the raw result payload of every kind.
	Result   json.RawMessage
	Metadata json.RawMessage
}

// follow takes a freshly submitted analysis through polling and retrieval.
func (a *Analyzer) follow(ctx context.Context, kind Kind, id string, nowait bool) (*Submission, error) {
	logger := a.logger.With(
		logging.Field{Key: "analysis_id", Value: id},
		logging.Field{Key: "kind", Value: kind.String()})
	logger.Info("successfully submitted analysis")

	if a.recorder != nil {
		if err := a.recorder.RecordSubmission(ctx, id, kind.String()); err != nil {
			logger.Warn("failed to record submission", logging.Field{Key: "error", Value: err})
		}
	}

	sub := &Submission{AnalysisID: id, Kind: kind, State: StateSubmitted}
	if nowait {
		return sub, nil
	}

	status, err := a.poller.Poll(ctx, a.statusFunc(kind), id, a.feedback)
	if err != nil {
		return nil, err
	}
	sub.Status = status

	logger.Debug("retrieving analysis result")
	result, err := Retrieve(ctx, a.resultFunc(kind), id, logger)
	if err != nil {
		return nil, fmt.Errorf("retrieve result of %s: %w", id, err)
	}
	if result == nil {
		sub.State = StateResultAbsent
		a.markFinished(ctx, logger, id, sub.State)
		return sub, nil
	}

	sub.State = StateResultAvailable
	sub.Result = result.Result
	sub.Metadata = result.Metadata
	logger.Debug("analysis metadata", logging.Field{Key: "metadata", Value: string(result.Metadata)})

	switch kind {
	case KindAdvise, KindProvenanceCheck:
		var rr model.ReportResult
		if len(result.Result) > 0 {
			if err := json.Unmarshal(result.Result, &rr); err != nil {
				return nil, fmt.Errorf("decode %s result of %s: %w", kind, id, err)
			}
		}
		sub.Report = rr.Report
		sub.Error = rr.Error
	case KindImageAnalysis:
	}

	a.markFinished(ctx, logger, id, sub.State)
	return sub, nil
}

func (a *Analyzer) markFinished(ctx context.Context, logger logging.Logger, id string, state State) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.MarkFinished(ctx, id, state.String()); err != nil {
		logger.Warn("failed to record analysis outcome", logging.Field{Key: "error", Value: err})
	}
}
