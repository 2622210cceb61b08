package app_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/thamos/internal/analyzer"
	"github.com/raysh454/thamos/internal/app"
	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/server"
	"github.com/raysh454/thamos/internal/testutil"
	"github.com/raysh454/thamos/internal/thothapi"
)

func newTestApplication(t *testing.T) *app.Application {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.PendingPolls = 0
	cfg.Logger = logging.NewTestLogger(t)
	ts := httptest.NewServer(server.NewServer(cfg))
	t.Cleanup(ts.Close)

	a := app.NewApplication(app.InitConfig("unused.example"), logging.NewTestLogger(t))
	a.Host = ts.URL
	return a
}

func TestNewApplication_Defaults(t *testing.T) {
	t.Parallel()
	a := app.NewApplication(nil, nil)
	require.NotNil(t, a.Config)
	require.NotNil(t, a.Logger)
	assert.Equal(t, "stable", a.Config.RecommendationType)
}

func TestApplication_ClientFactoryHostPrecedence(t *testing.T) {
	t.Parallel()
	a := app.NewApplication(app.InitConfig("configured.example"), nil)
	assert.Equal(t, "configured.example", a.ClientFactory().Host())

	a.Host = "explicit.example"
	assert.Equal(t, "explicit.example", a.ClientFactory().Host())
}

func TestApplication_WithAPIClient(t *testing.T) {
	t.Parallel()
	a := newTestApplication(t)
	recorder := &testutil.DummyRecorder{}
	a.Recorder = recorder

	var sub *analyzer.Submission
	err := a.WithAPIClient(context.Background(), func(ctx context.Context, an *analyzer.Analyzer) error {
		var err error
		sub, err = an.Advise(ctx, analyzer.AdviseRequest{Requirements: "[packages]\nflask = \"*\"\n"})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, analyzer.StateResultAvailable, sub.State)
	assert.Contains(t, string(sub.Report), "products")
	assert.Equal(t, []string{sub.AnalysisID}, recorder.Submitted)
	assert.Equal(t, "result-available", recorder.Finished[sub.AnalysisID])
}

func TestApplication_WithAPIClientUsesConfiguredEnvironment(t *testing.T) {
	t.Parallel()
	a := newTestApplication(t)

	err := a.WithAPIClient(context.Background(), func(ctx context.Context, an *analyzer.Analyzer) error {
		_, err := an.Advise(ctx, analyzer.AdviseRequest{
			Requirements:           "[packages]\nflask = \"*\"\n",
			RuntimeEnvironmentName: "missing",
		})
		return err
	})
	assert.True(t, errors.Is(err, analyzer.ErrInvalidInput))
	assert.True(t, errors.Is(err, app.ErrRuntimeEnvironmentNotFound))
}

func TestApplication_WithAPIClientPropagatesCallbackError(t *testing.T) {
	t.Parallel()
	a := newTestApplication(t)
	boom := errors.New("boom")

	err := a.WithAPIClient(context.Background(), func(context.Context, *analyzer.Analyzer) error {
		return boom
	})
	assert.Same(t, boom, err)
}

func TestApplication_WithAPIClientDiscoveryFailure(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	a := app.NewApplication(app.DefaultConfig(), logging.NewTestLogger(t))
	a.Host = url

	called := false
	err := a.WithAPIClient(context.Background(), func(context.Context, *analyzer.Analyzer) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, thothapi.ErrAPIDiscovery))
	assert.False(t, called)
}

func TestApplication_LogAndStatusDispatch(t *testing.T) {
	t.Parallel()
	a := newTestApplication(t)

	err := a.WithAPIClient(context.Background(), func(ctx context.Context, an *analyzer.Analyzer) error {
		sub, err := an.ImageAnalysis(ctx, analyzer.ImageAnalysisRequest{Image: "quay.io/thoth/s2i", NoWait: true})
		require.NoError(t, err)
		require.Equal(t, model.PrefixImageAnalysis, sub.AnalysisID[:len(model.PrefixImageAnalysis)])

		status, err := an.GetStatus(ctx, sub.AnalysisID)
		require.NoError(t, err)
		assert.True(t, status.Finished())

		log, err := an.GetLog(ctx, sub.AnalysisID)
		require.NoError(t, err)
		assert.Contains(t, log, sub.AnalysisID)
		return nil
	})
	require.NoError(t, err)
}
