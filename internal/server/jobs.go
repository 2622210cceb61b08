package server

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/thamos/internal/model"
)

type JobKind string

const (
	JobAdvise     JobKind = "advise"
	JobProvenance JobKind = "provenance"
	JobAnalyze    JobKind = "analyze"
)

func (k JobKind) prefix() string {
	switch k {
	case JobAdvise:
		return model.PrefixAdvise
	case JobProvenance:
		return model.PrefixProvenanceCheck
	case JobAnalyze:
		return model.PrefixImageAnalysis
	default:
		return string(k) + "-"
	}
}

// Job is one simulated analysis.
type Job struct {
	ID          string         `json:"analysis_id"`
	Kind        JobKind        `json:"kind"`
	Parameters  map[string]any `json:"parameters"`
	SubmittedAt time.Time      `json:"submitted_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`

	// Failure makes the result endpoint report a failed analysis.
	Failure string `json:"-"`

	result   json.RawMessage
	polls    int
	log      []string
	pendings int
}

// JobStore keeps simulated analyses in memory. Each analysis finishes after
// its status was requested a configured number of times.
type JobStore struct {
	mu           sync.Mutex
	jobs         map[string]*Job
	pendingPolls int
	now          func() time.Time
}

func NewJobStore(pendingPolls int) *JobStore {
	if pendingPolls < 0 {
		pendingPolls = 0
	}
	return &JobStore{
		jobs:         make(map[string]*Job),
		pendingPolls: pendingPolls,
		now:          time.Now,
	}
}

// Submit registers a new analysis of kind. A non-empty failure makes the
// analysis finish without a result.
func (s *JobStore) Submit(kind JobKind, params map[string]any, result json.RawMessage, failure string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := kind.prefix() + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	now := s.now()
	job := &Job{
		ID:          id,
		Kind:        kind,
		Parameters:  params,
		SubmittedAt: now,
		Failure:     failure,
		result:      result,
		pendings:    s.pendingPolls,
	}
	job.log = append(job.log, now.UTC().Format(time.RFC3339)+" analysis "+id+" scheduled")
	s.jobs[id] = job
	return job
}

// Status returns the status of id, advancing the simulation by one poll.
func (s *JobStore) Status(kind JobKind, id string) (*model.AnalysisStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.lookupLocked(kind, id)
	if !ok {
		return nil, false
	}

	started := job.SubmittedAt
	st := &model.AnalysisStatus{State: "running", StartedAt: &started}
	if job.FinishedAt == nil {
		job.polls++
		if job.polls > job.pendings {
			t := s.now()
			job.FinishedAt = &t
			if job.Failure != "" {
				job.log = append(job.log, t.UTC().Format(time.RFC3339)+" analysis failed: "+job.Failure)
			} else {
				job.log = append(job.log, t.UTC().Format(time.RFC3339)+" analysis finished")
			}
		}
	}
	if job.FinishedAt != nil {
		finished := *job.FinishedAt
		exitCode := 0
		st.State = "terminated"
		st.FinishedAt = &finished
		if job.Failure != "" {
			exitCode = 1
			st.Reason = "Error"
		}
		st.ExitCode = &exitCode
	}
	return st, true
}

// Get returns a snapshot of id.
func (s *JobStore) Get(kind JobKind, id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.lookupLocked(kind, id)
	if !ok {
		return nil, false
	}
	cp := *job
	cp.log = append([]string(nil), job.log...)
	return &cp, true
}

// Log returns the log lines of id.
func (s *JobStore) Log(kind JobKind, id string) (string, bool) {
	job, ok := s.Get(kind, id)
	if !ok {
		return "", false
	}
	return strings.Join(job.log, "\n") + "\n", true
}

func (s *JobStore) lookupLocked(kind JobKind, id string) (*Job, bool) {
	job, ok := s.jobs[id]
	if !ok || job.Kind != kind {
		return nil, false
	}
	return job, true
}

// Result returns the stored result document of a job.
func (j *Job) Result() json.RawMessage {
	return j.result
}
