package main

import (
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/events"
	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/ui"
)

func envelope(t *testing.T, topic string, ev any) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(topic, ev)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestDescribeEnvelope(t *testing.T) {
	ui.ForceNoColor()

	entry := model.LogEntry{Timestamp: time.Now(), Message: "FOUND: Ann Lee (@ann)", Level: model.LevelSuccess}
	tests := []struct {
		name string
		env  events.Envelope
		want string
	}{
		{"lock acquired", envelope(t, events.TopicLockAcquired, events.LockAcquired{Operator: "alice"}), "lock acquired by alice"},
		{"lock released", envelope(t, events.TopicLockReleased, events.LockReleased{Operator: "alice"}), "lock released by alice"},
		{"usage", envelope(t, events.TopicUsageRecorded, events.UsageRecorded{Count: 1, DailyUsed: 42}), "usage +1 (42/100 today)"},
		{"run log", envelope(t, events.RunLogTopic("run-abc"), events.RunLogged{RunID: "run-abc", Operator: "bob", Entry: entry}), "[bob] FOUND: Ann Lee (@ann)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := describeEnvelope(tt.env)
			if !ok {
				t.Fatal("expected envelope to be described")
			}
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("got %q, want suffix %q", got, tt.want)
			}
		})
	}
}

func TestDescribeEnvelope_Unknown(t *testing.T) {
	env := envelope(t, "phonecheck.other", map[string]string{"x": "y"})
	if _, ok := describeEnvelope(env); ok {
		t.Fatal("unknown topic should not be described")
	}
}
