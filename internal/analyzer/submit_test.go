package analyzer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/thamos/internal/analyzer"
	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/testutil"
	"github.com/raysh454/thamos/internal/thothapi"
)

const pipfile = "[packages]\nflask = \"*\"\n"

func newTestAnalyzer(t *testing.T, api analyzer.API, cfg analyzer.Config, opts ...analyzer.Option) (*analyzer.Analyzer, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	opts = append([]analyzer.Option{analyzer.WithPoller(newTestPoller(t, rec))}, opts...)
	return analyzer.New(api, cfg, logging.NewTestLogger(t), opts...), rec
}

func intPtr(v int) *int { return &v }

func TestAdvise_WaitsAndExtractsReport(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{
		PendingPolls: 2,
		Result:       json.RawMessage(`{"report":{"products":[1]},"error":false}`),
		Metadata:     json.RawMessage(`{"document_id":"adviser-x"}`),
	}
	recorder := &testutil.DummyRecorder{}
	a, rec := newTestAnalyzer(t, api, analyzer.Config{}, analyzer.WithRecorder(recorder))

	sub, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile})
	require.NoError(t, err)

	assert.Equal(t, analyzer.StateResultAvailable, sub.State)
	assert.Equal(t, analyzer.KindAdvise, sub.Kind)
	assert.JSONEq(t, `{"products":[1]}`, string(sub.Report))
	assert.JSONEq(t, `false`, string(sub.Error))
	assert.JSONEq(t, `{"document_id":"adviser-x"}`, string(sub.Metadata))
	assert.True(t, sub.Status.Finished())
	assert.Len(t, rec.Sleeps(), 2)

	assert.Equal(t, []string{
		"PostAdvisePython",
		"GetAdvisePythonStatus", "GetAdvisePythonStatus", "GetAdvisePythonStatus",
		"GetAdvisePython",
	}, api.Calls())
	assert.Equal(t, 1, api.ResultFetches(sub.AnalysisID))

	assert.Equal(t, []string{sub.AnalysisID}, recorder.Submitted)
	assert.Equal(t, "result-available", recorder.Finished[sub.AnalysisID])
}

func TestAdvise_NoWaitSkipsPollAndRetrieve(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, rec := newTestAnalyzer(t, api, analyzer.Config{})

	sub, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile, NoWait: true})
	require.NoError(t, err)

	assert.Equal(t, analyzer.StateSubmitted, sub.State)
	assert.Equal(t, "adviser-fake-1", sub.AnalysisID)
	assert.Nil(t, sub.Status)
	assert.Equal(t, []string{"PostAdvisePython"}, api.Calls())
	assert.Zero(t, api.StatusFetches(sub.AnalysisID))
	assert.Zero(t, api.ResultFetches(sub.AnalysisID))
	assert.Empty(t, rec.Sleeps())
}

func TestAdvise_DefaultsSentToAPI(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile, NoWait: true})
	require.NoError(t, err)

	require.Len(t, api.AdviseParams, 1)
	params := api.AdviseParams[0]
	assert.Equal(t, "stable", params.RecommendationType)
	require.NotNil(t, params.Count)
	assert.Equal(t, 1, *params.Count)
	assert.Nil(t, params.Limit)

	input := api.AdviseInputs[0]
	assert.Equal(t, pipfile, input.ApplicationStack.Requirements)
	assert.Equal(t, "", input.ApplicationStack.RequirementsLock)
	assert.Equal(t, model.RequirementsFormatPipenv, input.ApplicationStack.RequirementsFormat)
	assert.Nil(t, input.RuntimeEnvironment)
}

func TestAdvise_LimitAndCount(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.Advise(context.Background(), analyzer.AdviseRequest{
		Requirements: pipfile,
		Limit:        intPtr(100),
		Count:        intPtr(3),
		NoWait:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, *api.AdviseParams[0].Limit)
	assert.Equal(t, 3, *api.AdviseParams[0].Count)
}

func TestAdvise_InvalidInput(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: "  \n"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, analyzer.ErrInvalidInput))
	assert.Empty(t, api.Calls())
}

func TestAdvise_ConflictingRuntimeEnvironment(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{
		Environments: testutil.StaticEnvironments{{Name: "ubi8"}},
	})

	_, err := a.Advise(context.Background(), analyzer.AdviseRequest{
		Requirements:           pipfile,
		RuntimeEnvironment:     &model.RuntimeEnvironment{Name: "custom"},
		RuntimeEnvironmentName: "ubi8",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, analyzer.ErrConflictingInput))
	assert.Empty(t, api.Calls())
}

func TestAdvise_UnknownRuntimeEnvironmentName(t *testing.T) {
	t.Parallel()

	t.Run("with configured environments", func(t *testing.T) {
		t.Parallel()
		api := &testutil.FakeAPI{}
		a, _ := newTestAnalyzer(t, api, analyzer.Config{
			Environments: testutil.StaticEnvironments{{Name: "ubi8"}},
		})
		_, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile, RuntimeEnvironmentName: "fedora"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, analyzer.ErrInvalidInput))
		assert.Empty(t, api.Calls())
	})

	t.Run("without configuration", func(t *testing.T) {
		t.Parallel()
		api := &testutil.FakeAPI{}
		a, _ := newTestAnalyzer(t, api, analyzer.Config{})
		_, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile, RuntimeEnvironmentName: "fedora"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, analyzer.ErrInvalidInput))
		assert.Empty(t, api.Calls())
	})
}

func TestAdvise_RuntimeEnvironmentSelection(t *testing.T) {
	t.Parallel()
	envs := testutil.StaticEnvironments{
		{Name: "ubi8", PythonVersion: "3.8", RecommendationType: "security"},
		{Name: "fedora", PythonVersion: "3.9"},
	}

	cases := []struct {
		name     string
		req      analyzer.AdviseRequest
		wantName string
	}{
		{"first configured by default", analyzer.AdviseRequest{}, "ubi8"},
		{"by name", analyzer.AdviseRequest{RuntimeEnvironmentName: "fedora"}, "fedora"},
		{"explicit", analyzer.AdviseRequest{RuntimeEnvironment: &model.RuntimeEnvironment{Name: "inline"}}, "inline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := &testutil.FakeAPI{}
			a, _ := newTestAnalyzer(t, api, analyzer.Config{Environments: envs})

			req := tc.req
			req.Requirements = pipfile
			req.NoWait = true
			_, err := a.Advise(context.Background(), req)
			require.NoError(t, err)

			env := api.AdviseInputs[0].RuntimeEnvironment
			require.NotNil(t, env)
			assert.Equal(t, tc.wantName, env.Name)
			assert.Empty(t, env.RecommendationType, "recommendation type must not be part of the payload")
		})
	}
}

func TestAdvise_RecommendationTypePrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		explicit   string
		envType    string
		configured string
		want       string
	}{
		{"explicit wins", "Latest", "security", "testing", "latest"},
		{"environment over config", "", "SECURITY", "testing", "security"},
		{"config over default", "", "", "Testing", "testing"},
		{"default stable", "", "", "", "stable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			api := &testutil.FakeAPI{}
			a, _ := newTestAnalyzer(t, api, analyzer.Config{
				RecommendationType: tc.configured,
				Environments:       testutil.StaticEnvironments{{Name: "env", RecommendationType: tc.envType}},
			})

			_, err := a.Advise(context.Background(), analyzer.AdviseRequest{
				Requirements:       pipfile,
				RecommendationType: tc.explicit,
				NoWait:             true,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, api.AdviseParams[0].RecommendationType)
		})
	}
}

func TestAdvise_DomainFailureIsAbsentResult(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{
		ResultErr: &thothapi.APIError{StatusCode: http.StatusBadRequest, Reason: "400", Body: []byte(`{"error":"no stack found"}`)},
	}
	recorder := &testutil.DummyRecorder{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{}, analyzer.WithRecorder(recorder))

	sub, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile})
	require.NoError(t, err)
	assert.Equal(t, analyzer.StateResultAbsent, sub.State)
	assert.Nil(t, sub.Report)
	assert.Equal(t, "result-absent", recorder.Finished[sub.AnalysisID])
}

func TestAdvise_TransportFailurePropagates(t *testing.T) {
	t.Parallel()
	apiErr := &thothapi.APIError{StatusCode: http.StatusServiceUnavailable, Reason: "503"}
	api := &testutil.FakeAPI{ResultErr: apiErr}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile})
	require.Error(t, err)
	var got *thothapi.APIError
	require.True(t, errors.As(err, &got))
	assert.Same(t, apiErr, got)
}

func TestAdvise_SubmitErrorPropagates(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	api := &testutil.FakeAPI{SubmitErr: boom}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile})
	assert.True(t, errors.Is(err, boom))
}

func TestAdvise_RecorderFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{Result: json.RawMessage(`{"report":[],"error":false}`)}
	recorder := &testutil.DummyRecorder{Err: errors.New("disk full")}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{}, analyzer.WithRecorder(recorder))

	sub, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile})
	require.NoError(t, err)
	assert.Equal(t, analyzer.StateResultAvailable, sub.State)
}

func TestAdvise_FeedbackReceivesWaits(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{PendingPolls: 3, Result: json.RawMessage(`{"report":[],"error":false}`)}
	fb := &testutil.DummyFeedback{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{}, analyzer.WithFeedback(fb))

	sub, err := a.Advise(context.Background(), analyzer.AdviseRequest{Requirements: pipfile})
	require.NoError(t, err)
	assert.Equal(t, sub.AnalysisID, fb.LastID)
	assert.Len(t, fb.Waits, 3)
	assert.Equal(t, 1, fb.Stops)
}

func TestProvenanceCheck(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{
		PendingPolls: 1,
		Result:       json.RawMessage(`{"report":[{"type":"INFO"}],"error":true}`),
	}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{RequirementsFormat: "pip"})

	sub, err := a.ProvenanceCheck(context.Background(), analyzer.ProvenanceRequest{
		Requirements:     pipfile,
		RequirementsLock: `{"default":{}}`,
	})
	require.NoError(t, err)

	assert.Equal(t, analyzer.KindProvenanceCheck, sub.Kind)
	assert.Equal(t, analyzer.StateResultAvailable, sub.State)
	assert.JSONEq(t, `[{"type":"INFO"}]`, string(sub.Report))
	assert.JSONEq(t, `true`, string(sub.Error))

	require.Len(t, api.ProvenanceStacks, 1)
	assert.Equal(t, `{"default":{}}`, api.ProvenanceStacks[0].RequirementsLock)
	assert.Equal(t, "pip", api.ProvenanceStacks[0].RequirementsFormat)
	assert.Equal(t, []string{
		"PostProvenancePython",
		"GetProvenancePythonStatus", "GetProvenancePythonStatus",
		"GetProvenancePython",
	}, api.Calls())
}

func TestProvenanceCheck_InvalidInput(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.ProvenanceCheck(context.Background(), analyzer.ProvenanceRequest{RequirementsLock: "{}"})
	assert.True(t, errors.Is(err, analyzer.ErrInvalidInput))
	assert.Empty(t, api.Calls())
}

func TestImageAnalysis(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{Result: json.RawMessage(`{"rpm":[],"python-packages":[]}`)}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	sub, err := a.ImageAnalysis(context.Background(), analyzer.ImageAnalysisRequest{Image: "quay.io/thoth/s2i"})
	require.NoError(t, err)

	assert.Equal(t, analyzer.KindImageAnalysis, sub.Kind)
	assert.Equal(t, analyzer.StateResultAvailable, sub.State)
	assert.JSONEq(t, `{"rpm":[],"python-packages":[]}`, string(sub.Result))
	assert.Nil(t, sub.Report)

	params := api.AnalyzeParams[0]
	assert.True(t, params.VerifyTLS)
	assert.Empty(t, params.RegistryUser)
	assert.Equal(t, []string{"PostAnalyze", "GetAnalyzeStatus", "GetAnalyze"}, api.Calls())
}

func TestImageAnalysis_Options(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})
	verify := false

	sub, err := a.ImageAnalysis(context.Background(), analyzer.ImageAnalysisRequest{
		Image:            "registry.local/app",
		RegistryUser:     "bot",
		RegistryPassword: "secret",
		VerifyTLS:        &verify,
		Force:            true,
		NoWait:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, analyzer.StateSubmitted, sub.State)

	params := api.AnalyzeParams[0]
	assert.False(t, params.VerifyTLS)
	assert.True(t, params.Force)
	assert.Equal(t, "bot", params.RegistryUser)
	assert.Equal(t, "secret", params.RegistryPassword)
}

func TestImageAnalysis_InvalidInput(t *testing.T) {
	t.Parallel()
	api := &testutil.FakeAPI{}
	a, _ := newTestAnalyzer(t, api, analyzer.Config{})

	_, err := a.ImageAnalysis(context.Background(), analyzer.ImageAnalysisRequest{})
	assert.True(t, errors.Is(err, analyzer.ErrInvalidInput))
	assert.Empty(t, api.Calls())
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "submitted", analyzer.StateSubmitted.String())
	assert.Equal(t, "result-available", analyzer.StateResultAvailable.String())
	assert.Equal(t, "result-absent", analyzer.StateResultAbsent.String())
}
