// Package client talks to the phonecheck status service. HTTPClient implements
// store.StatusStore so an operator session can use the service exactly like a
// directly attached store.
package client

import (
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// LockRequest is the body of POST /v1/lock and POST /v1/unlock.
type LockRequest struct {
	Operator string `json:"operator,omitempty"`
}

// UsageRequest is the body of POST /v1/usage.
type UsageRequest struct {
	Count    int    `json:"count"`
	Operator string `json:"operator,omitempty"`
}

// OperatorInfo is one entry of GET /v1/operators.
type OperatorInfo struct {
	Name       string    `json:"name"`
	LastSeen   time.Time `json:"last_seen"`
	LastAction string    `json:"last_action"`
}

// OperatorsResponse is the response of GET /v1/operators.
type OperatorsResponse struct {
	Operators []OperatorInfo     `json:"operators"`
	Status    model.SystemStatus `json:"status"`
}

// HealthResponse is the response of GET /v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
