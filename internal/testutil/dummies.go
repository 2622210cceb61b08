// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorMessages returns a copy of the recorded error messages.
func (l *DummyLogger) ErrorMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.Errors...)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set FailURLs[url] = true to force an error for a specific URL, or Handler
// to script responses.
type DummyWebClient struct {
	ResponseDelay time.Duration
	FailURLs      map[string]bool
	Handler       func(req *webclient.Request) (*webclient.Response, error)
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, errors.New("dummy fetch fail for " + req.URL)
	}
	if d.Handler != nil {
		return d.Handler(req)
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte("ok:" + req.URL),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns the number of requests seen so far.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Recorder ──────────────────────────────────────────────────────────

// DummyRecorder implements analyzer.Recorder in memory.
type DummyRecorder struct {
	mu        sync.Mutex
	Submitted []string
	Finished  map[string]string
	Err       error
}

func (r *DummyRecorder) RecordSubmission(_ context.Context, analysisID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Submitted = append(r.Submitted, analysisID)
	return r.Err
}

func (r *DummyRecorder) MarkFinished(_ context.Context, analysisID, outcome string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Finished == nil {
		r.Finished = map[string]string{}
	}
	r.Finished[analysisID] = outcome
	return r.Err
}

// ─── Environments ──────────────────────────────────────────────────────

// StaticEnvironments implements analyzer.EnvironmentLookup over a fixed list.
type StaticEnvironments []model.RuntimeEnvironment

func (s StaticEnvironments) RuntimeEnvironment(name string) (*model.RuntimeEnvironment, error) {
	if name == "" {
		if len(s) == 0 {
			return nil, nil
		}
		env := s[0]
		return &env, nil
	}
	for i := range s {
		if s[i].Name == name {
			env := s[i]
			return &env, nil
		}
	}
	return nil, fmt.Errorf("runtime environment %q not found", name)
}

// ─── Feedback ──────────────────────────────────────────────────────────

// DummyFeedback implements analyzer.Feedback and records every notification.
type DummyFeedback struct {
	mu     sync.Mutex
	Starts int
	Waits  []time.Duration
	Stops  int
	LastID string
}

func (f *DummyFeedback) Start(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Starts++
	f.LastID = id
}

func (f *DummyFeedback) Waiting(_ string, next time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Waits = append(f.Waits, next)
}

func (f *DummyFeedback) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stops++
}
