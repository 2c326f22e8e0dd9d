// Package events carries the session event log and the bus that mirrors lock,
// usage and run-log changes to other sessions.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// Event topic constants
const (
	TopicLockAcquired  = "phonecheck.lock.acquired"
	TopicLockReleased  = "phonecheck.lock.released"
	TopicUsageRecorded = "phonecheck.usage.recorded"

	// TopicAll matches every topic published by phonecheck.
	TopicAll = "phonecheck.>"
	// TopicAllRunLogs matches the log stream of every run.
	TopicAllRunLogs = "phonecheck.run.*.log"
)

// RunLogTopic is the subject a run's log entries are mirrored to.
func RunLogTopic(runID string) string {
	return fmt.Sprintf("phonecheck.run.%s.log", runID)
}

// Event types

type LockAcquired struct {
	Operator string `json:"operator"`
}

type LockReleased struct {
	// Operator is the holder at the time of release, if known.
	Operator string `json:"operator,omitempty"`
}

type UsageRecorded struct {
	Count     int `json:"count"`
	DailyUsed int `json:"daily_used"`
}

type RunLogged struct {
	RunID    string         `json:"run_id"`
	Operator string         `json:"operator"`
	Entry    model.LogEntry `json:"entry"`
}

// Envelope wraps every payload on the bus.
type Envelope struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Sent    time.Time       `json:"sent"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope encodes event into an envelope for topic.
func NewEnvelope(topic string, event any) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling event: %w", err)
	}
	return Envelope{
		ID:      uuid.NewString(),
		Topic:   topic,
		Sent:    time.Now().UTC(),
		Payload: data,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Topic, err)
	}
	return nil
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
