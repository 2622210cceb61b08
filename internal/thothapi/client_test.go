package thothapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/thothapi"
	"github.com/raysh454/thamos/internal/webclient"
)

type captured struct {
	method string
	path   string
	query  map[string][]string
	body   []byte
}

func newTestClient(t *testing.T, status int, response string) (*thothapi.Client, *captured) {
	t.Helper()
	c := &captured{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.Path
		c.query = r.URL.Query()
		c.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(ts.Close)

	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.NewNop(), ts.Client())
	require.NoError(t, err)
	return thothapi.NewClient(wc, ts.URL+"/api/v1/", logging.NewTestLogger(t)), c
}

func intPtr(v int) *int { return &v }

func TestClient_PostAdvisePython(t *testing.T) {
	t.Parallel()
	client, c := newTestClient(t, http.StatusAccepted, `{"analysis_id":"adviser-1","parameters":{}}`)

	resp, err := client.PostAdvisePython(context.Background(), &model.AdviseInput{
		ApplicationStack: model.PythonStack{Requirements: "[packages]", RequirementsFormat: model.RequirementsFormatPipenv},
		RuntimeEnvironment: &model.RuntimeEnvironment{Name: "ubi8", PythonVersion: "3.8"},
	}, model.AdviseParameters{
		RecommendationType: "stable",
		Debug:              true,
		Count:              intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "adviser-1", resp.AnalysisID)

	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/api/v1/advise/python", c.path)
	assert.Equal(t, []string{"stable"}, c.query["recommendation_type"])
	assert.Equal(t, []string{"true"}, c.query["debug"])
	assert.Equal(t, []string{"1"}, c.query["count"])
	assert.NotContains(t, c.query, "limit")
	assert.NotContains(t, c.query, "force")

	var body map[string]any
	require.NoError(t, json.Unmarshal(c.body, &body))
	stack := body["application_stack"].(map[string]any)
	assert.Equal(t, "[packages]", stack["requirements"])
	assert.Equal(t, "", stack["requirements_lock"])
	env := body["runtime_environment"].(map[string]any)
	assert.Equal(t, "ubi8", env["name"])
	assert.NotContains(t, env, "recommendation_type")
}

func TestClient_PostAdvisePython_Limit(t *testing.T) {
	t.Parallel()
	client, c := newTestClient(t, http.StatusAccepted, `{"analysis_id":"adviser-2"}`)

	_, err := client.PostAdvisePython(context.Background(), &model.AdviseInput{}, model.AdviseParameters{Limit: intPtr(5), Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, c.query["limit"])
	assert.Equal(t, []string{"true"}, c.query["force"])
}

func TestClient_PostProvenancePython(t *testing.T) {
	t.Parallel()
	client, c := newTestClient(t, http.StatusAccepted, `{"analysis_id":"provenance-checker-1"}`)

	resp, err := client.PostProvenancePython(context.Background(), &model.PythonStack{
		Requirements:     "[packages]",
		RequirementsLock: "{}",
	}, model.ProvenanceParameters{})
	require.NoError(t, err)
	assert.Equal(t, "provenance-checker-1", resp.AnalysisID)
	assert.Equal(t, "/api/v1/provenance/python", c.path)
	assert.Empty(t, c.query)

	var body model.ProvenanceInput
	require.NoError(t, json.Unmarshal(c.body, &body))
	assert.Equal(t, "{}", body.ApplicationStack.RequirementsLock)
}

func TestClient_PostAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("without credentials", func(t *testing.T) {
		t.Parallel()
		client, c := newTestClient(t, http.StatusAccepted, `{"analysis_id":"package-extract-1"}`)

		_, err := client.PostAnalyze(context.Background(), model.ImageAnalysisParameters{Image: "quay.io/thoth/s2i", VerifyTLS: true})
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/analyze", c.path)
		assert.Equal(t, []string{"quay.io/thoth/s2i"}, c.query["image"])
		assert.Equal(t, []string{"true"}, c.query["verify_tls"])
		assert.NotContains(t, c.query, "registry_user")
		assert.NotContains(t, c.query, "registry_password")
		assert.Empty(t, c.body)
	})

	t.Run("with one credential", func(t *testing.T) {
		t.Parallel()
		client, c := newTestClient(t, http.StatusAccepted, `{"analysis_id":"package-extract-2"}`)

		_, err := client.PostAnalyze(context.Background(), model.ImageAnalysisParameters{Image: "img", RegistryUser: "bob"})
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, c.query["registry_user"])
		assert.Equal(t, []string{""}, c.query["registry_password"])
		assert.Equal(t, []string{"false"}, c.query["verify_tls"])
	})
}

func TestClient_GetEndpoints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		path string
		call func(*thothapi.Client) error
	}{
		{"advise result", "/api/v1/advise/python/adviser-x", func(c *thothapi.Client) error {
			_, err := c.GetAdvisePython(context.Background(), "adviser-x")
			return err
		}},
		{"advise status", "/api/v1/advise/python/adviser-x/status", func(c *thothapi.Client) error {
			_, err := c.GetAdvisePythonStatus(context.Background(), "adviser-x")
			return err
		}},
		{"advise log", "/api/v1/advise/python/adviser-x/log", func(c *thothapi.Client) error {
			_, err := c.GetAdvisePythonLog(context.Background(), "adviser-x")
			return err
		}},
		{"provenance result", "/api/v1/provenance/python/provenance-checker-x", func(c *thothapi.Client) error {
			_, err := c.GetProvenancePython(context.Background(), "provenance-checker-x")
			return err
		}},
		{"provenance status", "/api/v1/provenance/python/provenance-checker-x/status", func(c *thothapi.Client) error {
			_, err := c.GetProvenancePythonStatus(context.Background(), "provenance-checker-x")
			return err
		}},
		{"provenance log", "/api/v1/provenance/python/provenance-checker-x/log", func(c *thothapi.Client) error {
			_, err := c.GetProvenancePythonLog(context.Background(), "provenance-checker-x")
			return err
		}},
		{"analyze result", "/api/v1/analyze/package-extract-x", func(c *thothapi.Client) error {
			_, err := c.GetAnalyze(context.Background(), "package-extract-x")
			return err
		}},
		{"analyze status", "/api/v1/analyze/package-extract-x/status", func(c *thothapi.Client) error {
			_, err := c.GetAnalyzeStatus(context.Background(), "package-extract-x")
			return err
		}},
		{"analyze log", "/api/v1/analyze/package-extract-x/log", func(c *thothapi.Client) error {
			_, err := c.GetAnalyzeLog(context.Background(), "package-extract-x")
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client, c := newTestClient(t, http.StatusOK, `{}`)
			require.NoError(t, tc.call(client))
			assert.Equal(t, http.MethodGet, c.method)
			assert.Equal(t, tc.path, c.path)
		})
	}
}

func TestClient_DecodesStatus(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, http.StatusOK,
		`{"analysis_id":"adviser-1","status":{"state":"terminated","started_at":"2024-01-01T00:00:00Z","finished_at":"2024-01-01T00:01:00Z","exit_code":0}}`)

	resp, err := client.GetAdvisePythonStatus(context.Background(), "adviser-1")
	require.NoError(t, err)
	require.NotNil(t, resp.Status)
	assert.True(t, resp.Status.Finished())
	assert.Equal(t, "terminated", resp.Status.State)
}

func TestClient_NonSuccessReturnsAPIError(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, http.StatusBadRequest, `{"error":"resolution failed","parameters":{}}`)

	_, err := client.GetAdvisePython(context.Background(), "adviser-1")
	require.Error(t, err)

	var apiErr *thothapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "resolution failed", apiErr.ErrorMessage())
	assert.True(t, apiErr.DomainFailure())
	assert.Contains(t, apiErr.Error(), "resolution failed")
}

func TestAPIError_DomainFailure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"bad request with error", 400, `{"error":"boom"}`, true},
		{"not found with error", 404, `{"error":"no such analysis"}`, true},
		{"bad request without error", 400, `{"parameters":{}}`, false},
		{"bad request empty error", 400, `{"error":""}`, false},
		{"non json body", 400, `<html>oops</html>`, false},
		{"rate limited", 429, `{"error":"slow down"}`, false},
		{"server error", 500, `{"error":"internal"}`, false},
		{"unavailable", 503, `{"error":"down"}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := &thothapi.APIError{StatusCode: tc.status, Reason: http.StatusText(tc.status), Body: []byte(tc.body)}
			assert.Equal(t, tc.want, e.DomainFailure())
		})
	}
}
