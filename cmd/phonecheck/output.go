package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/runner"
	"github.com/alfredjeanlab/phonecheck/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// summaryView is the JSON shape of a finished run.
type summaryView struct {
	RunID       string                `json:"run_id"`
	Total       int                   `json:"total"`
	Attempted   int                   `json:"attempted"`
	Found       int                   `json:"found"`
	Interrupted bool                  `json:"interrupted,omitempty"`
	Positives   []model.LookupOutcome `json:"positives"`
	ReportError string                `json:"report_error,omitempty"`
	LockError   string                `json:"release_error,omitempty"`
}

func newSummaryView(s *runner.Summary) summaryView {
	v := summaryView{
		RunID:       s.RunID,
		Total:       s.Total,
		Attempted:   s.Attempted,
		Found:       s.Found,
		Interrupted: s.Interrupted,
		Positives:   s.Positives,
	}
	if v.Positives == nil {
		v.Positives = []model.LookupOutcome{}
	}
	if s.ReportErr != nil {
		v.ReportError = s.ReportErr.Error()
	}
	if s.ReleaseErr != nil {
		v.LockError = s.ReleaseErr.Error()
	}
	return v
}

// printStatus writes the human-readable form of a status snapshot.
func printStatus(w io.Writer, st model.SystemStatus) {
	st = st.Normalize()
	if st.Locked {
		holder := st.LockedBy
		if holder == "" {
			holder = "another operator"
		}
		fmt.Fprintf(w, "Lock:       %s\n", ui.RenderWarning("held by "+holder))
	} else {
		fmt.Fprintf(w, "Lock:       %s\n", ui.RenderSuccess("free"))
	}
	fmt.Fprintf(w, "Used today: %d/%d (%d remaining)\n", st.DailyUsed, model.DailyLimit, st.Remaining())
}

// formatAgo renders the time since t as a short duration ("3m", "2h").
func formatAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
