package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/thamos/internal/model"
)

// FakeAPI implements analyzer.API with scripted, in-memory analyses.
// Every analysis reports PendingPolls unfinished statuses before finishing.
type FakeAPI struct {
	PendingPolls int
	Result       json.RawMessage
	Metadata     json.RawMessage

	SubmitErr error
	StatusErr error
	ResultErr error
	LogErr    error

	mu               sync.Mutex
	next             int
	calls            []string
	statusFetches    map[string]int
	resultFetches    map[string]int
	AdviseInputs     []*model.AdviseInput
	AdviseParams     []model.AdviseParameters
	ProvenanceStacks []*model.PythonStack
	AnalyzeParams    []model.ImageAnalysisParameters
}

// Calls returns the names of all methods invoked so far, in order.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// StatusFetches returns how many times the status of id was fetched.
func (f *FakeAPI) StatusFetches(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusFetches[id]
}

// ResultFetches returns how many times the result of id was fetched.
func (f *FakeAPI) ResultFetches(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resultFetches[id]
}

// record and submit expect f.mu to be held.
func (f *FakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *FakeAPI) submit(call, prefix string) (*model.AnalysisResponse, error) {
	f.record(call)
	if f.SubmitErr != nil {
		return nil, f.SubmitErr
	}
	f.next++
	return &model.AnalysisResponse{AnalysisID: fmt.Sprintf("%sfake-%d", prefix, f.next)}, nil
}

func (f *FakeAPI) status(call, id string) (*model.AnalysisStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call)
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if f.statusFetches == nil {
		f.statusFetches = map[string]int{}
	}
	f.statusFetches[id]++

	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := &model.AnalysisStatus{State: "running", StartedAt: &started}
	if f.statusFetches[id] > f.PendingPolls {
		finished := started.Add(time.Minute)
		exit := 0
		st.State = "terminated"
		st.FinishedAt = &finished
		st.ExitCode = &exit
	}
	return &model.AnalysisStatusResponse{AnalysisID: id, Status: st}, nil
}

func (f *FakeAPI) result(call, id string) (*model.AnalysisResultResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call)
	if f.resultFetches == nil {
		f.resultFetches = map[string]int{}
	}
	f.resultFetches[id]++
	if f.ResultErr != nil {
		return nil, f.ResultErr
	}
	return &model.AnalysisResultResponse{AnalysisID: id, Result: f.Result, Metadata: f.Metadata}, nil
}

func (f *FakeAPI) log(call, id string) (*model.AnalysisLogResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(call)
	if f.LogErr != nil {
		return nil, f.LogErr
	}
	return &model.AnalysisLogResponse{AnalysisID: id, Log: "log of " + id}, nil
}

func (f *FakeAPI) PostAdvisePython(_ context.Context, input *model.AdviseInput, params model.AdviseParameters) (*model.AnalysisResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AdviseInputs = append(f.AdviseInputs, input)
	f.AdviseParams = append(f.AdviseParams, params)
	return f.submit("PostAdvisePython", model.PrefixAdvise)
}

func (f *FakeAPI) GetAdvisePython(_ context.Context, id string) (*model.AnalysisResultResponse, error) {
	return f.result("GetAdvisePython", id)
}

func (f *FakeAPI) GetAdvisePythonStatus(_ context.Context, id string) (*model.AnalysisStatusResponse, error) {
	return f.status("GetAdvisePythonStatus", id)
}

func (f *FakeAPI) GetAdvisePythonLog(_ context.Context, id string) (*model.AnalysisLogResponse, error) {
	return f.log("GetAdvisePythonLog", id)
}

func (f *FakeAPI) PostProvenancePython(_ context.Context, stack *model.PythonStack, _ model.ProvenanceParameters) (*model.AnalysisResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProvenanceStacks = append(f.ProvenanceStacks, stack)
	return f.submit("PostProvenancePython", model.PrefixProvenanceCheck)
}

func (f *FakeAPI) GetProvenancePython(_ context.Context, id string) (*model.AnalysisResultResponse, error) {
	return f.result("GetProvenancePython", id)
}

func (f *FakeAPI) GetProvenancePythonStatus(_ context.Context, id string) (*model.AnalysisStatusResponse, error) {
	return f.status("GetProvenancePythonStatus", id)
}

func (f *FakeAPI) GetProvenancePythonLog(_ context.Context, id string) (*model.AnalysisLogResponse, error) {
	return f.log("GetProvenancePythonLog", id)
}

func (f *FakeAPI) PostAnalyze(_ context.Context, params model.ImageAnalysisParameters) (*model.AnalysisResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AnalyzeParams = append(f.AnalyzeParams, params)
	return f.submit("PostAnalyze", model.PrefixImageAnalysis)
}

func (f *FakeAPI) GetAnalyze(_ context.Context, id string) (*model.AnalysisResultResponse, error) {
	return f.result("GetAnalyze", id)
}

func (f *FakeAPI) GetAnalyzeStatus(_ context.Context, id string) (*model.AnalysisStatusResponse, error) {
	return f.status("GetAnalyzeStatus", id)
}

func (f *FakeAPI) GetAnalyzeLog(_ context.Context, id string) (*model.AnalysisLogResponse, error) {
	return f.log("GetAnalyzeLog", id)
}
