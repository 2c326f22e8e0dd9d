package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	body        string
	contentType string
	auth        string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.contentType = r.Header.Get("Content-Type")
	h.auth = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, "")
	return c, srv
}

func TestHTTPClient_FetchStatus(t *testing.T) {
	h := &testHandler{responseBody: `{"locked": true, "lockedBy": "alice", "dailyUsed": 42}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	st, err := c.FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus() error = %v", err)
	}
	if h.method != http.MethodGet || h.path != "/v1/status" {
		t.Errorf("request = %s %s, want GET /v1/status", h.method, h.path)
	}
	want := model.SystemStatus{Locked: true, LockedBy: "alice", DailyUsed: 42}
	if st != want {
		t.Errorf("status = %+v, want %+v", st, want)
	}
}

func TestHTTPClient_AcquireLock(t *testing.T) {
	h := &testHandler{responseBody: `{"locked": true, "lockedBy": "alice", "dailyUsed": 0}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.AcquireLock(context.Background(), "alice"); err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/lock" {
		t.Errorf("request = %s %s, want POST /v1/lock", h.method, h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q", h.contentType)
	}
	var body LockRequest
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Operator != "alice" {
		t.Errorf("operator = %q, want alice", body.Operator)
	}
}

func TestHTTPClient_AcquireLock_Conflict(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusConflict,
		responseBody: `{"error": "lock held by bob", "holder": "bob"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	err := c.AcquireLock(context.Background(), "alice")
	var held *store.LockHeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected *store.LockHeldError, got %T: %v", err, err)
	}
	if held.Holder != "bob" {
		t.Errorf("holder = %q, want bob", held.Holder)
	}
	if !errors.Is(err, store.ErrLockHeld) {
		t.Error("errors.Is(err, store.ErrLockHeld) = false")
	}
}

func TestHTTPClient_ReleaseLock(t *testing.T) {
	h := &testHandler{responseBody: `{"locked": false, "dailyUsed": 3}`}
	c, srv := newTestClient(h)
	defer srv.Close()
	c.WithOperator("alice")

	if err := c.ReleaseLock(context.Background()); err != nil {
		t.Fatalf("ReleaseLock() error = %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/unlock" {
		t.Errorf("request = %s %s, want POST /v1/unlock", h.method, h.path)
	}
	if !strings.Contains(h.body, `"operator":"alice"`) {
		t.Errorf("body = %s, want operator alice", h.body)
	}
}

func TestHTTPClient_RecordUsage(t *testing.T) {
	h := &testHandler{responseBody: `{"locked": false, "dailyUsed": 4}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.RecordUsage(context.Background(), 1); err != nil {
		t.Fatalf("RecordUsage() error = %v", err)
	}
	if h.path != "/v1/usage" {
		t.Errorf("path = %q, want /v1/usage", h.path)
	}
	var body UsageRequest
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}

func TestHTTPClient_RecordUsage_ZeroIsNoop(t *testing.T) {
	h := &testHandler{}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.RecordUsage(context.Background(), 0); err != nil {
		t.Fatalf("RecordUsage(0) error = %v", err)
	}
	if h.method != "" {
		t.Errorf("RecordUsage(0) sent a %s request", h.method)
	}
}

func TestHTTPClient_Operators(t *testing.T) {
	h := &testHandler{responseBody: `{
		"operators": [{"name": "alice", "last_seen": "2026-01-15T10:00:00Z", "last_action": "lock"}],
		"status": {"locked": true, "lockedBy": "alice", "dailyUsed": 10}
	}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.Operators(context.Background())
	if err != nil {
		t.Fatalf("Operators() error = %v", err)
	}
	if len(resp.Operators) != 1 || resp.Operators[0].Name != "alice" || resp.Operators[0].LastAction != "lock" {
		t.Errorf("operators = %+v", resp.Operators)
	}
	if !resp.Status.Locked {
		t.Errorf("status = %+v", resp.Status)
	}
}

func TestHTTPClient_Health(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.path != "/v1/health" {
		t.Errorf("path = %q, want /v1/health", h.path)
	}
	if status != "ok" {
		t.Errorf("status = %q, want 'ok'", status)
	}
}

func TestHTTPClient_SendsBearerToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "s3cret")
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.auth != "Bearer s3cret" {
		t.Errorf("Authorization = %q, want 'Bearer s3cret'", h.auth)
	}
}

// --- Error handling ---

func TestHTTPClient_Error_JSONBody(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusUnauthorized,
		responseBody: `{"error": "unauthorized"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.FetchStatus(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "unauthorized" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestHTTPClient_Error_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	err := c.ReleaseLock(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Message != "internal server error" {
		t.Errorf("message = %q, want 'internal server error'", apiErr.Message)
	}
}

func TestHTTPClient_Error_FormatString(t *testing.T) {
	apiErr := &APIError{StatusCode: 403, Message: "forbidden"}
	want := "HTTP 403: forbidden"
	if apiErr.Error() != want {
		t.Errorf("Error() = %q, want %q", apiErr.Error(), want)
	}
}

func TestHTTPClient_Error_CanceledContext(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want to wrap context.Canceled", err)
	}
}

func TestHTTPClient_204NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	if err := c.ReleaseLock(context.Background()); err != nil {
		t.Fatalf("ReleaseLock() with 204 error = %v", err)
	}
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	c := NewHTTPClient("http://localhost:8080/", "")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want 'http://localhost:8080'", c.baseURL)
	}
}
