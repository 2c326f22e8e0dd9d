package events

import "context"

// NoopPublisher drops every event. Sessions and the service use it when
// PHONECHECK_NATS_URL is not set.
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
