// Package runner drives one batch run through admission, the shared lock, the
// paced lookup loop, reporting and release.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/events"
	"github.com/alfredjeanlab/phonecheck/internal/idgen"
	"github.com/alfredjeanlab/phonecheck/internal/lookup"
	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/quota"
	"github.com/alfredjeanlab/phonecheck/internal/report"
	"github.com/alfredjeanlab/phonecheck/internal/store"
)

// ErrRunInProgress is returned by Run while another run of the same Runner is
// active.
var ErrRunInProgress = errors.New("a run is already in progress")

// Snapshotter exposes the cached shared status. *status.Mirror implements it.
type Snapshotter interface {
	Snapshot() model.SystemStatus
}

// LockCoordinator takes and clears the shared lock. *lock.Coordinator
// implements it.
type LockCoordinator interface {
	Acquire(ctx context.Context, operator string) error
	Release(ctx context.Context) error
}

// Config wires a Runner to its collaborators. Mirror, Lock and Lookup are
// required.
type Config struct {
	Mirror   Snapshotter
	Lock     LockCoordinator
	Lookup   lookup.Client
	Reporter report.Reporter     // nil: report.Noop
	Usage    store.UsageRecorder // nil: usage is not recorded
	Log      *events.Log         // nil: a fresh log
	Pacing   Pacing              // zero: DefaultPacing
	Sleeper  Sleeper             // nil: ClockSleeper
	Now      func() time.Time    // nil: time.Now
	NewRunID func() (string, error)
	Logger   *slog.Logger
}

// RunStatus is a point-in-time view of the active or last run.
type RunStatus struct {
	RunID     string            `json:"run_id,omitempty"`
	State     model.RunState    `json:"state"`
	Progress  model.RunProgress `json:"progress"`
	Found     int               `json:"found"`
	Attempted int               `json:"attempted"`
}

// Summary describes a run that reached RunComplete.
type Summary struct {
	RunID       string
	Total       int
	Attempted   int
	Found       int
	Outcomes    []model.LookupOutcome
	Positives   []model.LookupOutcome
	Interrupted bool
	ReportErr   error
	ReleaseErr  error
}

// Runner executes batch runs one at a time.
type Runner struct {
	cfg Config

	mu     sync.Mutex
	active bool
	status RunStatus
}

// New creates a runner, filling defaults for optional collaborators.
func New(cfg Config) *Runner {
	if cfg.Reporter == nil {
		cfg.Reporter = report.Noop{}
	}
	if cfg.Log == nil {
		cfg.Log = events.NewLog()
	}
	if cfg.Pacing.Unit == 0 {
		cfg.Pacing = DefaultPacing
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = ClockSleeper
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewRunID == nil {
		cfg.NewRunID = idgen.NewRunID
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{cfg: cfg, status: RunStatus{State: model.RunIdle}}
}

// Log returns the event log the runner writes to.
func (r *Runner) Log() *events.Log { return r.cfg.Log }

// Status returns the state of the active or last run.
func (r *Runner) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Run executes req. It returns a *model.ValidationError, *quota.Denial or
// *lock.AcquireError when the run is aborted before any lookup, and a summary
// with a nil error once the run completes. Cancelling ctx stops the loop
// before the next identifier; the positives collected so far are still
// reported and the lock is released.
func (r *Runner) Run(ctx context.Context, req model.BatchRequest) (*Summary, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.active = true
	r.status = RunStatus{State: model.RunIdle}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	runID, err := r.cfg.NewRunID()
	if err != nil {
		return nil, fmt.Errorf("new run id: %w", err)
	}
	r.cfg.Log.Reset()
	r.update(func(s *RunStatus) { s.RunID = runID })
	r.transition(model.RunAdmitting)

	req.Identifiers = cleanIdentifiers(req.Identifiers)
	if err := model.ValidateBatchRequest(&req); err != nil {
		return nil, r.abort(err)
	}

	decision := quota.CanAdmit(r.cfg.Mirror.Snapshot(), len(req.Identifiers))
	if !decision.Admit {
		if decision.Reason == nil {
			return nil, r.abort(errors.New("nothing to check"))
		}
		return nil, r.abort(decision.Reason)
	}
	r.cfg.Log.Info(fmt.Sprintf("Starting check of %d numbers (%d remaining today)", len(req.Identifiers), decision.Remaining))

	r.transition(model.RunAcquiring)
	if err := r.cfg.Lock.Acquire(ctx, req.Operator); err != nil {
		return nil, r.abort(err)
	}

	sum := r.runLocked(ctx, runID, req)

	r.cfg.Log.Success(fmt.Sprintf("Check complete: found %d/%d", sum.Found, sum.Attempted))
	r.cfg.Logger.Info("run complete", "run", runID, "found", sum.Found, "attempted", sum.Attempted, "total", sum.Total)
	return sum, nil
}

// runLocked runs the loop and the report with the lock held. The deferred
// release runs on every way out, panics included.
func (r *Runner) runLocked(ctx context.Context, runID string, req model.BatchRequest) (sum *Summary) {
	sum = &Summary{RunID: runID, Total: len(req.Identifiers)}
	defer func() {
		r.transition(model.RunReleasing)
		if err := r.cfg.Lock.Release(context.WithoutCancel(ctx)); err != nil {
			sum.ReleaseErr = err
			r.cfg.Log.Error(fmt.Sprintf("Failed to release lock: %v", err))
		}
		r.transition(model.RunComplete)
	}()

	r.transition(model.RunRunning)
	var c Collector
	sum.Attempted, sum.Interrupted = r.loop(ctx, req, &c)
	sum.Outcomes = c.Outcomes()
	sum.Positives = c.Positives()
	sum.Found = len(sum.Positives)

	r.transition(model.RunReporting)
	if sum.Found > 0 {
		payload := c.Payload(runID, req.ReportTarget, req.Operator, r.cfg.Now())
		r.cfg.Log.Info(fmt.Sprintf("Writing %d results to %q...", sum.Found, req.ReportTarget.Label))
		if err := r.cfg.Reporter.Submit(context.WithoutCancel(ctx), payload); err != nil {
			sum.ReportErr = err
			r.cfg.Log.Error(fmt.Sprintf("Failed to write results: %v", err))
		} else {
			r.cfg.Log.Success("Results written")
		}
	}
	return sum
}

// loop processes identifiers in order and returns how many lookups were
// attempted and whether ctx stopped it early.
func (r *Runner) loop(ctx context.Context, req model.BatchRequest, c *Collector) (attempted int, interrupted bool) {
	n := len(req.Identifiers)
	for i, id := range req.Identifiers {
		if ctx.Err() != nil {
			r.cfg.Log.Warning(fmt.Sprintf("Run interrupted: %d of %d numbers not checked", n-i, n))
			return attempted, true
		}

		r.update(func(s *RunStatus) { s.Progress = model.RunProgress{Completed: i + 1, Total: n} })
		r.cfg.Log.Info(fmt.Sprintf("[%d/%d] checking %s", i+1, n, id))

		outcome, err := r.cfg.Lookup.Lookup(ctx, id, req.Credentials)
		attempted++
		r.recordUsage(ctx)
		found := false
		switch {
		case err != nil:
			r.cfg.Log.Error(fmt.Sprintf("Lookup of %s failed: %v", id, err))
		case outcome.Found:
			found = true
			c.Add(outcome)
			r.cfg.Log.Success("FOUND: " + describe(outcome))
		default:
			c.Add(outcome)
			r.cfg.Log.Warning("Not found: " + id)
		}
		r.update(func(s *RunStatus) {
			s.Attempted = attempted
			if found {
				s.Found++
			}
		})

		if i < n-1 {
			d := r.cfg.Pacing.Draw()
			r.cfg.Log.Info(fmt.Sprintf("Pausing %s...", d))
			// A cancelled sleep is picked up at the top of the next iteration.
			_ = r.cfg.Sleeper.Sleep(ctx, d)
		}
	}
	return attempted, false
}

func (r *Runner) recordUsage(ctx context.Context) {
	if r.cfg.Usage == nil {
		return
	}
	if err := r.cfg.Usage.RecordUsage(context.WithoutCancel(ctx), 1); err != nil {
		r.cfg.Log.Warning(fmt.Sprintf("Usage not recorded: %v", err))
	}
}

func (r *Runner) abort(err error) error {
	r.cfg.Log.Error(err.Error())
	r.transition(model.RunAborted)
	return err
}

func (r *Runner) transition(to model.RunState) {
	r.mu.Lock()
	from := r.status.State
	r.status.State = to
	r.mu.Unlock()
	if err := model.ValidateRunTransition(from, to); err != nil {
		r.cfg.Logger.Error("unexpected run transition", "err", err)
	}
}

func (r *Runner) update(fn func(*RunStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.status)
}

func cleanIdentifiers(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func describe(o model.LookupOutcome) string {
	if o.Attributes == nil {
		return o.Identifier
	}
	s := o.Attributes.DisplayName()
	if s == "" {
		s = o.Identifier
	}
	if o.Attributes.Handle != "" {
		s += " (@" + o.Attributes.Handle + ")"
	}
	return s
}
