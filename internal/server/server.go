package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/time/rate"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	_ "github.com/raysh454/thamos/internal/server/docs"
)

// APIVersion is reported by the API root.
const APIVersion = "0.1.0"

// FailureMarker in submitted requirements or an image name makes the analysis fail.
const FailureMarker = "thoth-fail"

const basePath = "/api/v1"

var recommendationTypes = []string{"latest", "stable", "testing", "security", "performance"}

// Server implements the subset of the Thoth User API used by thamos. Analyses
// are simulated in memory.
type Server struct {
	cfg     Config
	jobs    *JobStore
	router  chi.Router
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewServer creates a new Server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStderrLogger("server", false)
	}

	s := &Server{
		cfg:    cfg,
		jobs:   NewJobStore(cfg.PendingPolls),
		router: chi.NewRouter(),
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.routes()
	return s
}

// Jobs returns the underlying job store for tests.
func (s *Server) Jobs() *JobStore {
	return s.jobs
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.rateLimitMiddleware)

	r.Get(basePath, s.handleInfo)
	r.Get(basePath+"/swagger/*", httpSwagger.Handler(httpSwagger.URL(basePath+"/swagger/doc.json")))

	// Advise
	r.Post(basePath+"/advise/python", s.handlePostAdvise)
	r.Get(basePath+"/advise/python/{id}", s.resultHandler(JobAdvise))
	r.Get(basePath+"/advise/python/{id}/status", s.statusHandler(JobAdvise))
	r.Get(basePath+"/advise/python/{id}/log", s.logHandler(JobAdvise))

	// Provenance check
	r.Post(basePath+"/provenance/python", s.handlePostProvenance)
	r.Get(basePath+"/provenance/python/{id}", s.resultHandler(JobProvenance))
	r.Get(basePath+"/provenance/python/{id}/status", s.statusHandler(JobProvenance))
	r.Get(basePath+"/provenance/python/{id}/log", s.logHandler(JobProvenance))

	// Image analysis
	r.Post(basePath+"/analyze", s.handlePostAnalyze)
	r.Get(basePath+"/analyze/{id}", s.resultHandler(JobAnalyze))
	r.Get(basePath+"/analyze/{id}/status", s.statusHandler(JobAnalyze))
	r.Get(basePath+"/analyze/{id}/log", s.logHandler(JobAnalyze))
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.logger.Warn("rate limit exceeded", logging.Field{Key: "path", Value: r.URL.Path})
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		if q.Has("registry_password") {
			q.Set("registry_password", "***")
		}
		fields = append(fields, logging.Field{Key: "query", Value: q.Encode()})
	}
	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body_size", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, params map[string]any) {
	writeJSON(w, status, ErrorResponse{Error: msg, Parameters: params})
}

func writeNotFound(w http.ResponseWriter, id string) {
	writeError(w, http.StatusNotFound, "Requested analysis not found", map[string]any{"analysis_id": id})
}

// --- HTTP handlers ---

// handleInfo godoc
// @Summary API information
// @Tags meta
// @Produce json
// @Success 200 {object} model.APIInfo
// @Router / [get]
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.APIInfo{Version: APIVersion, Deployment: s.cfg.Deployment})
}

// handlePostAdvise godoc
// @Summary Submit an advise for a Python application stack
// @Tags advise
// @Accept json
// @Produce json
// @Param input body model.AdviseInput true "Application stack and runtime environment"
// @Param recommendation_type query string true "Recommendation type"
// @Param limit query int false "Maximum number of stacks to resolve"
// @Param count query int false "Number of stacks to report"
// @Param debug query bool false "Run in debug mode"
// @Param force query bool false "Do not use cached results"
// @Success 202 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Router /advise/python [post]
func (s *Server) handlePostAdvise(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := map[string]any{}

	recType := strings.ToLower(q.Get("recommendation_type"))
	if !slices.Contains(recommendationTypes, recType) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid recommendation_type %q", q.Get("recommendation_type")), nil)
		return
	}
	params["recommendation_type"] = recType

	for _, key := range []string{"limit", "count"} {
		if raw := q.Get(key); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", key, raw), nil)
				return
			}
			params[key] = n
		}
	}
	if err := boolParams(q.Get, params, "debug", "force"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var input model.AdviseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}
	if strings.TrimSpace(input.ApplicationStack.Requirements) == "" {
		writeError(w, http.StatusBadRequest, "application_stack.requirements is required", nil)
		return
	}
	if input.RuntimeEnvironment != nil {
		params["runtime_environment"] = input.RuntimeEnvironment
	}

	var failure string
	if strings.Contains(input.ApplicationStack.Requirements, FailureMarker) {
		failure = "Unable to resolve application stack: no stack satisfying requirements found"
	}

	job := s.jobs.Submit(JobAdvise, params, adviseResult(&input, recType), failure)
	s.accepted(w, job)
}

// handlePostProvenance godoc
// @Summary Submit a provenance check of a locked Python application stack
// @Tags provenance
// @Accept json
// @Produce json
// @Param input body model.ProvenanceInput true "Application stack"
// @Param debug query bool false "Run in debug mode"
// @Param force query bool false "Do not use cached results"
// @Success 202 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Router /provenance/python [post]
func (s *Server) handlePostProvenance(w http.ResponseWriter, r *http.Request) {
	params := map[string]any{}
	if err := boolParams(r.URL.Query().Get, params, "debug", "force"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var input model.ProvenanceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", nil)
		return
	}
	if strings.TrimSpace(input.ApplicationStack.Requirements) == "" {
		writeError(w, http.StatusBadRequest, "application_stack.requirements is required", nil)
		return
	}

	var failure string
	if strings.Contains(input.ApplicationStack.Requirements, FailureMarker) {
		failure = "Provenance check failed: unable to query configured package indexes"
	}

	job := s.jobs.Submit(JobProvenance, params, provenanceResult(&input), failure)
	s.accepted(w, job)
}

// handlePostAnalyze godoc
// @Summary Submit an analysis of a container image
// @Tags analyze
// @Produce json
// @Param image query string true "Image to analyze"
// @Param verify_tls query bool false "Verify TLS when pulling the image"
// @Param registry_user query string false "Registry user"
// @Param registry_password query string false "Registry password"
// @Param debug query bool false "Run in debug mode"
// @Param force query bool false "Do not use cached results"
// @Success 202 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Router /analyze [post]
func (s *Server) handlePostAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	image := strings.TrimSpace(q.Get("image"))
	if image == "" {
		writeError(w, http.StatusBadRequest, "image is required", nil)
		return
	}

	params := map[string]any{"image": image, "verify_tls": true}
	if err := boolParams(q.Get, params, "debug", "force", "verify_tls"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if user := q.Get("registry_user"); user != "" {
		params["registry_user"] = user
	}

	var failure string
	if strings.Contains(image, FailureMarker) {
		failure = fmt.Sprintf("Unable to pull image %s: manifest unknown", image)
	}

	job := s.jobs.Submit(JobAnalyze, params, imageResult(image), failure)
	s.accepted(w, job)
}

func (s *Server) accepted(w http.ResponseWriter, job *Job) {
	s.logger.Info("scheduled analysis",
		logging.Field{Key: "analysis_id", Value: job.ID},
		logging.Field{Key: "kind", Value: string(job.Kind)})
	writeJSON(w, http.StatusAccepted, AnalysisResponse{AnalysisID: job.ID, Parameters: job.Parameters})
}

func (s *Server) statusHandler(kind JobKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		st, ok := s.jobs.Status(kind, id)
		if !ok {
			writeNotFound(w, id)
			return
		}
		writeJSON(w, http.StatusOK, model.AnalysisStatusResponse{AnalysisID: id, Status: st})
	}
}

func (s *Server) resultHandler(kind JobKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		job, ok := s.jobs.Get(kind, id)
		if !ok {
			writeNotFound(w, id)
			return
		}
		params := map[string]any{"analysis_id": id}
		if job.FinishedAt == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Analysis %s is still in progress", id), params)
			return
		}
		if job.Failure != "" {
			writeError(w, http.StatusBadRequest, job.Failure, params)
			return
		}

		metadata, _ := json.Marshal(map[string]any{
			"analyzer":         analyzerName(kind),
			"analyzer_version": APIVersion,
			"document_id":      id,
			"datetime":         job.FinishedAt.UTC().Format(time.RFC3339),
			"deployment_name":  s.cfg.Deployment,
		})
		writeJSON(w, http.StatusOK, AnalysisResultResponse{
			AnalysisID: id,
			Result:     job.Result(),
			Metadata:   metadata,
			Parameters: job.Parameters,
		})
	}
}

func (s *Server) logHandler(kind JobKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log, ok := s.jobs.Log(kind, id)
		if !ok {
			writeNotFound(w, id)
			return
		}
		writeJSON(w, http.StatusOK, AnalysisLogResponse{AnalysisID: id, Log: log})
	}
}

func boolParams(get func(string) string, params map[string]any, keys ...string) error {
	for _, key := range keys {
		raw := get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q", key, raw)
		}
		params[key] = v
	}
	return nil
}
