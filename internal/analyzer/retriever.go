package analyzer

import (
	"context"
	"errors"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/thothapi"
)

// ResultFunc fetches the result of a finished analysis.
type ResultFunc func(ctx context.Context, id string) (*model.AnalysisResultResponse, error)

// Retrieve fetches the result of id. When the service reports that the analysis
// itself failed, the reason is logged and a nil result is returned without error.
// Every other error is returned unchanged.
func Retrieve(ctx context.Context, fetch ResultFunc, id string, logger logging.Logger) (*model.AnalysisResultResponse, error) {
	result, err := fetch(ctx, id)
	if err == nil {
		return result, nil
	}

	var apiErr *thothapi.APIError
	if errors.As(err, &apiErr) && apiErr.DomainFailure() {
		if logger == nil {
			logger = logging.NewNop()
		}
		logger.Error(apiErr.ErrorMessage(),
			logging.Field{Key: "analysis_id", Value: id},
			logging.Field{Key: "status", Value: apiErr.StatusCode})
		return nil, nil
	}
	return nil, err
}
