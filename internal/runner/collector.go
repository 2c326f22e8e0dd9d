package runner

import (
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// Collector accumulates lookup outcomes in arrival order. It is owned by one
// run and not safe for concurrent use.
type Collector struct {
	outcomes []model.LookupOutcome
}

// Add appends an outcome.
func (c *Collector) Add(o model.LookupOutcome) {
	c.outcomes = append(c.outcomes, o)
}

// Outcomes returns every outcome in arrival order.
func (c *Collector) Outcomes() []model.LookupOutcome {
	out := make([]model.LookupOutcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// Positives returns the found outcomes in arrival order. Duplicates are kept.
func (c *Collector) Positives() []model.LookupOutcome {
	var out []model.LookupOutcome
	for _, o := range c.outcomes {
		if o.Found {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of outcomes.
func (c *Collector) Len() int { return len(c.outcomes) }

// Payload builds the report for the positives, tagged with the operator and
// the time of reporting.
func (c *Collector) Payload(runID string, target model.ReportTarget, operator string, checkedAt time.Time) model.ReportPayload {
	positives := c.Positives()
	entries := make([]model.ReportEntry, 0, len(positives))
	for _, o := range positives {
		entries = append(entries, model.ReportEntry{LookupOutcome: o, CheckedBy: operator, CheckedAt: checkedAt})
	}
	return model.ReportPayload{RunID: runID, Target: target, Entries: entries}
}
