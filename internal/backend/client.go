// Package backend is an HTTP client for the project analysis backend. It
// implements the analyzer, entity store, category store and split preview
// collaborators of the review workflow.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/service"
)

// Endpoint paths.
const (
	pathRoot         = "/"
	pathAnalyze      = "/api/project/import/ner-analyze"
	pathBulkCreate   = "/api/project/import/bulk-create-entities"
	pathConfig       = "/api/project/config"
	pathConfigUpdate = "/api/project/config/update"
	pathSplitPreview = "/api/project/import/split-preview"
)

// Config configures a Client.
type Config struct {
	HTTPClient  *http.Client
	BaseURL     string
	ProjectPath string
	Timeout     time.Duration
}

// Client talks to the backend on behalf of one project.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	projectPath string
}

var (
	_ service.Analyzer       = (*Client)(nil)
	_ service.EntityStore    = (*Client)(nil)
	_ service.CategoryStore  = (*Client)(nil)
	_ service.SplitPreviewer = (*Client)(nil)
)

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: backend URL is required", common.ErrMissingConfig)
	}
	if cfg.ProjectPath == "" {
		return nil, fmt.Errorf("%w: project path is required", common.ErrMissingConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		projectPath: cfg.ProjectPath,
	}, nil
}

// ProjectPath returns the project the client is bound to.
func (c *Client) ProjectPath() string { return c.projectPath }

// APIError is a non-2xx response from the backend.
type APIError struct {
	Path       string
	Detail     string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "Backend error: " + e.Path
}

func (e *APIError) Unwrap() error { return common.ErrBackendRequest }

// Temporary reports whether the status suggests trying again later: a
// server error, or a proxy in front of a backend that is still starting.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// post sends body as JSON and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, common.NewUserError("Could not reach the analysis backend", fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Path: path, StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}
	return data, nil
}

// parseDetail extracts the "detail" field of an error body. FastAPI sends
// either a string or a list of validation errors.
func parseDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// decode unmarshals a successful response.
func decode(path string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInvalidResponse, path, err)
	}
	return nil
}

// Ping checks that the backend answers on its root path.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, pathRoot, nil)
	return err
}

// WaitReady polls Ping with backoff until the backend answers. Server
// errors and refused connections are retried; a client error means
// something other than the backend is listening, so it fails at once.
func (c *Client) WaitReady(ctx context.Context, opts service.RetryOptions) error {
	return common.WithRetry(ctx, func() error {
		err := c.Ping(ctx)
		if err == nil || common.IsRetryable(err) {
			return err
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return common.Permanent(fmt.Errorf("unexpected status %d from %s: %w", apiErr.StatusCode, c.baseURL, err))
		}
		return common.Permanent(err)
	}, opts)
}
