package model

import (
	"encoding/json"
	"time"
)

// Analysis identifier prefixes. The server issues identifiers with exactly these
// prefixes, one per analysis kind.
const (
	PrefixImageAnalysis   = "package-extract-"
	PrefixProvenanceCheck = "provenance-checker-"
	PrefixAdvise          = "adviser-"
)

// AdviseParameters are the query parameters of an advise submission.
type AdviseParameters struct {
	RecommendationType string
	Debug              bool
	Force              bool

	// Limit and Count are only sent when non-nil.
	Limit *int
	Count *int
}

// ProvenanceParameters are the query parameters of a provenance check submission.
type ProvenanceParameters struct {
	Debug bool
	Force bool
}

// ImageAnalysisParameters are the query parameters of an image analysis submission.
type ImageAnalysisParameters struct {
	Image string
	Debug bool
	Force bool

	// VerifyTLS controls TLS verification when the service pulls the image.
	VerifyTLS bool

	// Registry credentials are only sent when at least one of them is set.
	RegistryUser     string
	RegistryPassword string
}

// AnalysisResponse is returned by every submission endpoint.
type AnalysisResponse struct {
	AnalysisID string         `json:"analysis_id"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Cached     bool           `json:"cached,omitempty"`
}

// AnalysisStatus is the state of a server-side analysis. An analysis is finished
// once FinishedAt is set, regardless of State.
type AnalysisStatus struct {
	State      string     `json:"state"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// Finished reports whether the analysis reached a terminal state.
func (s *AnalysisStatus) Finished() bool {
	return s != nil && s.FinishedAt != nil
}

// AnalysisStatusResponse wraps AnalysisStatus as returned by the status endpoints.
type AnalysisStatusResponse struct {
	AnalysisID string          `json:"analysis_id"`
	Status     *AnalysisStatus `json:"status"`
}

// AnalysisResultResponse is returned by the result endpoints once an analysis finished.
type AnalysisResultResponse struct {
	AnalysisID string          `json:"analysis_id,omitempty"`
	Result     json.RawMessage `json:"result"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	Parameters map[string]any  `json:"parameters,omitempty"`
}

// ReportResult is the shape of advise and provenance check results.
type ReportResult struct {
	Report json.RawMessage `json:"report"`
	Error  json.RawMessage `json:"error"`
}

// AnalysisLogResponse is returned by the log endpoints.
type AnalysisLogResponse struct {
	AnalysisID string `json:"analysis_id,omitempty"`
	Log        string `json:"log"`
}

// ErrorResponse is the structured error body of the API.
type ErrorResponse struct {
	Error      string         `json:"error"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// APIInfo is returned by the API root and used for discovery.
type APIInfo struct {
	Version    string `json:"version"`
	Deployment string `json:"deployment_name,omitempty"`
}
