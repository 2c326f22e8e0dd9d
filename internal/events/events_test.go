package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

func TestNoopPublisher(t *testing.T) {
	pub := &NoopPublisher{}
	if err := pub.Publish(context.Background(), TopicLockAcquired, LockAcquired{}); err != nil {
		t.Fatalf("NoopPublisher.Publish returned unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("NoopPublisher.Close returned unexpected error: %v", err)
	}
}

func TestPublishersImplementPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)
	var _ Publisher = (*NATSPublisher)(nil)
}

func TestRunLogTopic(t *testing.T) {
	if got, want := RunLogTopic("run-abc"), "phonecheck.run.run-abc.log"; got != want {
		t.Errorf("RunLogTopic = %q, want %q", got, want)
	}
}

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(TopicUsageRecorded, UsageRecorded{Count: 1, DailyUsed: 42})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		t.Errorf("envelope ID %q is not a uuid: %v", env.ID, err)
	}
	if env.Topic != TopicUsageRecorded {
		t.Errorf("Topic = %q", env.Topic)
	}
	var got UsageRecorded
	if err := env.Decode(&got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.DailyUsed != 42 {
		t.Errorf("DailyUsed = %d, want 42", got.DailyUsed)
	}

	if err := (Envelope{Topic: "x", Payload: json.RawMessage(`"nope"`)}).Decode(&got); err == nil {
		t.Error("expected error decoding a string into a struct")
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicLockAcquired, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	if err := pub.Publish(context.Background(), TopicLockAcquired, LockAcquired{Operator: "alice"}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	pub.Flush()

	select {
	case msg := <-ch:
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		var got LockAcquired
		if err := env.Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.Operator != "alice" {
			t.Errorf("got operator=%q, want %q", got.Operator, "alice")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	err = pub.Publish(context.Background(), TopicLockReleased, LockReleased{})
	if err == nil {
		t.Error("expected error publishing after close")
	}
}

func TestForward_MirrorsLogEntries(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAllRunLogs)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	log := NewLog()
	runID := ""
	log.Subscribe(Forward(pub, func() string { return runID }, "alice", nil))

	log.Info("before any run") // no run id: not published
	runID = "run-1"
	log.Success("found +100")
	pub.Flush()

	select {
	case env := <-ch:
		if env.Topic != RunLogTopic("run-1") {
			t.Errorf("topic = %q", env.Topic)
		}
		var got RunLogged
		if err := env.Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.Operator != "alice" || got.Entry.Message != "found +100" || got.Entry.Level != model.LevelSuccess {
			t.Errorf("got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mirrored entry")
	}

	select {
	case env := <-ch:
		t.Errorf("unexpected extra event %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}
