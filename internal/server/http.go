package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/phonecheck/internal/client"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *StatusServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("POST /v1/lock", s.handleLock)
	mux.HandleFunc("POST /v1/unlock", s.handleUnlock)
	mux.HandleFunc("POST /v1/usage", s.handleUsage)
	mux.HandleFunc("GET /v1/operators", s.handleOperators)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return RecoveryMiddleware(LoggingMiddleware(AuthMiddleware(authToken, mux)))
}

// handleStatus handles GET /v1/status.
func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.status(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleLock handles POST /v1/lock.
func (s *StatusServer) handleLock(w http.ResponseWriter, r *http.Request) {
	var req client.LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := s.acquire(r.Context(), req.Operator)
	if err != nil {
		var held *store.LockHeldError
		if errors.As(err, &held) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":  held.Error(),
				"holder": held.Holder,
			})
			return
		}
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleUnlock handles POST /v1/unlock. The body is optional.
func (s *StatusServer) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req client.LockRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	st, err := s.release(r.Context(), req.Operator)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleUsage handles POST /v1/usage.
func (s *StatusServer) handleUsage(w http.ResponseWriter, r *http.Request) {
	var req client.UsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := s.recordUsage(r.Context(), req.Count, req.Operator)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleOperators handles GET /v1/operators.
func (s *StatusServer) handleOperators(w http.ResponseWriter, r *http.Request) {
	resp, err := s.operators(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /v1/health.
func (s *StatusServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, client.HealthResponse{Status: "ok"})
}

// writeStoreError maps input errors to 400 and everything else to 500.
func (s *StatusServer) writeStoreError(w http.ResponseWriter, err error) {
	var ie inputError
	if errors.As(err, &ie) {
		writeError(w, http.StatusBadRequest, ie.Error())
		return
	}
	s.logger.Error("status store request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
