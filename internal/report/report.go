// Package report hands the positive outcomes of a run to durable sinks.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// Reporter persists a run's positive outcomes.
type Reporter interface {
	Submit(ctx context.Context, payload model.ReportPayload) error
}

// Named attaches a name to a reporter for error messages.
type Named struct {
	Name string
	Reporter
}

// Multi submits to every reporter in order. All reporters are attempted;
// the failures are joined.
type Multi []Named

func (m Multi) Submit(ctx context.Context, payload model.ReportPayload) error {
	var errs []error
	for _, r := range m {
		if err := r.Submit(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Noop accepts and discards every payload.
type Noop struct{}

func (Noop) Submit(context.Context, model.ReportPayload) error { return nil }
