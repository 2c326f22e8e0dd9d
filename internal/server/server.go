// Package server exposes a status store over HTTP and gRPC so operator
// sessions on different machines share one lock flag and one daily counter.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/client"
	"github.com/alfredjeanlab/phonecheck/internal/events"
	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/presence"
	"github.com/alfredjeanlab/phonecheck/internal/store"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// operatorStaleThreshold bounds GET /v1/operators to recently active operators.
const operatorStaleThreshold = 24 * time.Hour

// StatusServer serves the shared status store.
type StatusServer struct {
	store     store.StatusStore
	publisher events.Publisher
	health    *health.Server
	logger    *slog.Logger
	Presence  *presence.Tracker
}

// NewStatusServer returns a StatusServer backed by the given store and
// publisher. A nil logger means slog.Default().
func NewStatusServer(s store.StatusStore, p events.Publisher, logger *slog.Logger) *StatusServer {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusServer{
		store:     s,
		publisher: p,
		health:    health.NewServer(),
		logger:    logger,
		Presence:  presence.New(),
	}
}

// publish sends event to the bus. Failures are logged and never reach the
// caller; the store is the source of truth.
func (s *StatusServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

func (s *StatusServer) status(ctx context.Context) (model.SystemStatus, error) {
	st, err := s.store.FetchStatus(ctx)
	if err != nil {
		return model.SystemStatus{}, err
	}
	return st.Normalize(), nil
}

// acquire takes the lock for operator and returns the resulting status.
func (s *StatusServer) acquire(ctx context.Context, operator string) (model.SystemStatus, error) {
	if operator == "" {
		return model.SystemStatus{}, inputError("operator is required")
	}
	if err := s.store.AcquireLock(ctx, operator); err != nil {
		return model.SystemStatus{}, err
	}
	s.Presence.Record(operator, "lock")
	s.logger.Info("lock acquired", "operator", operator)
	s.publish(ctx, events.TopicLockAcquired, events.LockAcquired{Operator: operator})
	return s.status(ctx)
}

// release clears the lock. The released event names the holder as it was
// before the release, falling back to the requesting operator.
func (s *StatusServer) release(ctx context.Context, operator string) (model.SystemStatus, error) {
	holder := operator
	if before, err := s.status(ctx); err == nil && before.LockedBy != "" {
		holder = before.LockedBy
	}
	if err := s.store.ReleaseLock(ctx); err != nil {
		return model.SystemStatus{}, err
	}
	if operator != "" {
		s.Presence.Record(operator, "unlock")
	} else {
		s.Presence.LockReleased()
	}
	s.logger.Info("lock released", "operator", operator, "holder", holder)
	s.publish(ctx, events.TopicLockReleased, events.LockReleased{Operator: holder})
	return s.status(ctx)
}

// recordUsage adds count lookups to today's counter.
func (s *StatusServer) recordUsage(ctx context.Context, count int, operator string) (model.SystemStatus, error) {
	if count <= 0 {
		return model.SystemStatus{}, inputError("count must be positive")
	}
	if err := s.store.RecordUsage(ctx, count); err != nil {
		return model.SystemStatus{}, err
	}
	s.Presence.Record(operator, "usage")
	st, err := s.status(ctx)
	if err != nil {
		return model.SystemStatus{}, err
	}
	s.publish(ctx, events.TopicUsageRecorded, events.UsageRecorded{Count: count, DailyUsed: st.DailyUsed})
	return st, nil
}

// operators returns the presence roster alongside the current status.
func (s *StatusServer) operators(ctx context.Context) (*client.OperatorsResponse, error) {
	st, err := s.status(ctx)
	if err != nil {
		return nil, err
	}
	entries := s.Presence.Roster(operatorStaleThreshold)
	resp := &client.OperatorsResponse{
		Operators: make([]client.OperatorInfo, 0, len(entries)),
		Status:    st,
	}
	for _, e := range entries {
		resp.Operators = append(resp.Operators, client.OperatorInfo{
			Name:       e.Name,
			LastSeen:   e.LastSeen,
			LastAction: e.LastAction,
		})
	}
	return resp, nil
}

// CheckHealth probes the store once and updates the gRPC health status of
// client.StatusServiceName accordingly.
func (s *StatusServer) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.store.FetchStatus(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn("status store unhealthy", "error", err)
	}
	s.health.SetServingStatus(client.StatusServiceName, status)
	s.health.SetServingStatus("", status)
	return err
}

// MonitorHealth calls CheckHealth every interval until ctx is done. Idle
// presence entries are evicted on the same tick.
func (s *StatusServer) MonitorHealth(ctx context.Context, interval time.Duration) {
	_ = s.CheckHealth(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.CheckHealth(ctx)
			s.Presence.Evict(operatorStaleThreshold)
		}
	}
}

// Shutdown marks every service NOT_SERVING.
func (s *StatusServer) Shutdown() {
	s.health.Shutdown()
}
