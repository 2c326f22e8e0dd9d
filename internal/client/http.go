package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// HTTPClient implements store.StatusStore against the status service REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	operator   string
	httpClient *http.Client
}

var _ store.StatusStore = (*HTTPClient)(nil)

// NewHTTPClient creates a client targeting baseURL (e.g.
// "http://localhost:8080"). When token is non-empty an Authorization header is
// set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// WithOperator tags usage and release requests with the operator name so the
// service can track presence.
func (c *HTTPClient) WithOperator(name string) *HTTPClient {
	c.operator = name
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) FetchStatus(ctx context.Context) (model.SystemStatus, error) {
	var st model.SystemStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/status", nil, &st); err != nil {
		return model.SystemStatus{}, err
	}
	return st, nil
}

// AcquireLock returns *store.LockHeldError when the service answers 409.
func (c *HTTPClient) AcquireLock(ctx context.Context, operator string) error {
	err := c.doJSON(ctx, http.MethodPost, "/v1/lock", LockRequest{Operator: operator}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return &store.LockHeldError{Holder: apiErr.Holder}
	}
	return err
}

func (c *HTTPClient) ReleaseLock(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/unlock", LockRequest{Operator: c.operator}, nil)
}

func (c *HTTPClient) RecordUsage(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	return c.doJSON(ctx, http.MethodPost, "/v1/usage", UsageRequest{Count: n, Operator: c.operator}, nil)
}

// Operators lists the operators the service has seen.
func (c *HTTPClient) Operators(ctx context.Context) (*OperatorsResponse, error) {
	var resp OperatorsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/operators", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	// Holder is set on 409 responses to a lock request.
	Holder string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Holder string `json:"holder"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Holder: errResp.Holder}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
