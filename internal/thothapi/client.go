package thothapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/raysh454/thamos/internal/logging"
	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/webclient"
)

// Client is a typed client of the User API v1.
type Client struct {
	wc      webclient.WebClient
	baseURL string
	logger  logging.Logger
}

// NewClient returns a Client issuing requests relative to baseURL
// (e.g. "https://khemenu.thoth-station.ninja/api/v1").
func NewClient(wc webclient.WebClient, baseURL string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		wc:      wc,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With(logging.Field{Key: "component", Value: "thothapi"}),
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.wc.Close()
}

// Advise

func (c *Client) PostAdvisePython(ctx context.Context, input *model.AdviseInput, params model.AdviseParameters) (*model.AnalysisResponse, error) {
	q := url.Values{}
	if params.RecommendationType != "" {
		q.Set("recommendation_type", params.RecommendationType)
	}
	setBool(q, "debug", params.Debug)
	setBool(q, "force", params.Force)
	if params.Limit != nil {
		q.Set("limit", strconv.Itoa(*params.Limit))
	}
	if params.Count != nil {
		q.Set("count", strconv.Itoa(*params.Count))
	}

	var out model.AnalysisResponse
	if err := c.doJSON(ctx, http.MethodPost, "/advise/python", q, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAdvisePython(ctx context.Context, id string) (*model.AnalysisResultResponse, error) {
	return c.getResult(ctx, "/advise/python/"+url.PathEscape(id))
}

func (c *Client) GetAdvisePythonStatus(ctx context.Context, id string) (*model.AnalysisStatusResponse, error) {
	return c.getStatus(ctx, "/advise/python/"+url.PathEscape(id)+"/status")
}

func (c *Client) GetAdvisePythonLog(ctx context.Context, id string) (*model.AnalysisLogResponse, error) {
	return c.getLog(ctx, "/advise/python/"+url.PathEscape(id)+"/log")
}

// Provenance check

func (c *Client) PostProvenancePython(ctx context.Context, stack *model.PythonStack, params model.ProvenanceParameters) (*model.AnalysisResponse, error) {
	q := url.Values{}
	setBool(q, "debug", params.Debug)
	setBool(q, "force", params.Force)

	var body model.ProvenanceInput
	if stack != nil {
		body.ApplicationStack = *stack
	}

	var out model.AnalysisResponse
	if err := c.doJSON(ctx, http.MethodPost, "/provenance/python", q, &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProvenancePython(ctx context.Context, id string) (*model.AnalysisResultResponse, error) {
	return c.getResult(ctx, "/provenance/python/"+url.PathEscape(id))
}

func (c *Client) GetProvenancePythonStatus(ctx context.Context, id string) (*model.AnalysisStatusResponse, error) {
	return c.getStatus(ctx, "/provenance/python/"+url.PathEscape(id)+"/status")
}

func (c *Client) GetProvenancePythonLog(ctx context.Context, id string) (*model.AnalysisLogResponse, error) {
	return c.getLog(ctx, "/provenance/python/"+url.PathEscape(id)+"/log")
}

// Image analysis

func (c *Client) PostAnalyze(ctx context.Context, params model.ImageAnalysisParameters) (*model.AnalysisResponse, error) {
	q := url.Values{}
	q.Set("image", params.Image)
	setBool(q, "debug", params.Debug)
	setBool(q, "force", params.Force)
	q.Set("verify_tls", strconv.FormatBool(params.VerifyTLS))
	if params.RegistryUser != "" || params.RegistryPassword != "" {
		q.Set("registry_user", params.RegistryUser)
		q.Set("registry_password", params.RegistryPassword)
	}

	var out model.AnalysisResponse
	if err := c.doJSON(ctx, http.MethodPost, "/analyze", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAnalyze(ctx context.Context, id string) (*model.AnalysisResultResponse, error) {
	return c.getResult(ctx, "/analyze/"+url.PathEscape(id))
}

func (c *Client) GetAnalyzeStatus(ctx context.Context, id string) (*model.AnalysisStatusResponse, error) {
	return c.getStatus(ctx, "/analyze/"+url.PathEscape(id)+"/status")
}

func (c *Client) GetAnalyzeLog(ctx context.Context, id string) (*model.AnalysisLogResponse, error) {
	return c.getLog(ctx, "/analyze/"+url.PathEscape(id)+"/log")
}

func (c *Client) getResult(ctx context.Context, path string) (*model.AnalysisResultResponse, error) {
	var out model.AnalysisResultResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getStatus(ctx context.Context, path string) (*model.AnalysisStatusResponse, error) {
	var out model.AnalysisStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getLog(ctx context.Context, path string) (*model.AnalysisLogResponse, error) {
	var out model.AnalysisLogResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		headers.Set("Content-Type", "application/json")
	}

	c.logger.Debug("calling user api",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "path", Value: path})

	resp, err := c.wc.Do(ctx, &webclient.Request{
		Method:  method,
		URL:     target,
		Headers: headers,
		Body:    payload,
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := resp.Status
		if reason == "" {
			reason = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return &APIError{StatusCode: resp.StatusCode, Reason: reason, Body: resp.Body}
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func setBool(q url.Values, key string, v bool) {
	if v {
		q.Set(key, "true")
	}
}
