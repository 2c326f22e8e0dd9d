// Package lookup resolves one identifier to an account through the external
// lookup service.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// Client resolves a single identifier. A returned error means the lookup
// itself failed; a negative answer is an outcome with Found == false.
type Client interface {
	Lookup(ctx context.Context, identifier string, creds model.Credentials) (model.LookupOutcome, error)
}

// checkRequest is the body posted to the lookup endpoint.
type checkRequest struct {
	Phone   string `json:"phone"`
	APIID   string `json:"api_id"`
	APIHash string `json:"api_hash"`
}

// checkResponse is the lookup endpoint's answer. Error is set when the
// service could not complete the lookup, in which case Found is false.
type checkResponse struct {
	Phone     string `json:"phone"`
	Found     bool   `json:"found"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserID    int64  `json:"user_id"`
	Error     string `json:"error"`
}

// ServiceError is returned when the lookup service reports a failure, either
// with a non-2xx status or with an "error" field in the body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("lookup service: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "lookup service: " + e.Message
}

// HTTPClient posts each identifier to the lookup endpoint.
type HTTPClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the lookup endpoint, e.g.
// "http://localhost:3000/api/check-phone". token, when set, is sent as a
// bearer token.
func NewHTTPClient(endpoint, token string) *HTTPClient {
	return &HTTPClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *HTTPClient) Lookup(ctx context.Context, identifier string, creds model.Credentials) (model.LookupOutcome, error) {
	data, err := json.Marshal(checkRequest{Phone: identifier, APIID: creds.APIID, APIHash: creds.APIHash})
	if err != nil {
		return model.LookupOutcome{}, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return model.LookupOutcome{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.LookupOutcome{}, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.LookupOutcome{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return model.LookupOutcome{}, &ServiceError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var out checkResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return model.LookupOutcome{}, fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" {
		return model.LookupOutcome{}, &ServiceError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	return out.outcome(identifier), nil
}

func (r checkResponse) outcome(identifier string) model.LookupOutcome {
	o := model.LookupOutcome{Identifier: identifier, Found: r.Found}
	if r.Found {
		o.Attributes = &model.Attributes{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Handle:    r.Username,
			AccountID: r.UserID,
		}
	}
	return o
}
