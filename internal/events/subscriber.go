package events

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers decoded envelopes on the returned channel. Payloads
	// that are not envelopes are dropped. Call the returned cancel function
	// to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Envelope, func(), error)
	Close() error
}
