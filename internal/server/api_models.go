package server

import "encoding/json"

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error      string         `json:"error" example:"Requested analysis not found"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// AnalysisResponse is returned when an analysis is accepted.
type AnalysisResponse struct {
	AnalysisID string         `json:"analysis_id" example:"adviser-5f3c9b8e"`
	Parameters map[string]any `json:"parameters"`
	Cached     bool           `json:"cached"`
}

// AnalysisResultResponse carries the document of a finished analysis.
type AnalysisResultResponse struct {
	AnalysisID string          `json:"analysis_id" example:"adviser-5f3c9b8e"`
	Result     json.RawMessage `json:"result" swaggertype:"object"`
	Metadata   json.RawMessage `json:"metadata" swaggertype:"object"`
	Parameters map[string]any  `json:"parameters"`
}

// AnalysisLogResponse carries the log of an analysis.
type AnalysisLogResponse struct {
	AnalysisID string `json:"analysis_id" example:"adviser-5f3c9b8e"`
	Log        string `json:"log"`
}
