// Package events publishes group lifecycle events over NATS JetStream so
// downstream consumers (dashboards, reconciliation jobs) can react without
// polling the API. The bus is optional: a nil *Bus drops every publish.
package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// Subjects emitted by the service.
const (
	GroupScheduledSubject  = "groupdump.groups.scheduled"
	GroupCompletedSubject  = "groupdump.groups.completed"
	CardTransactionSubject = "groupdump.cards.transaction"
)

// Bus wraps a NATS JetStream connection for publishing events.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a Bus connected to the provided NATS endpoint.
func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close shuts down the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes v as JSON and publishes it to the given subject. A nil bus
// is a no-op so callers need not guard wiring.
func (b *Bus) Publish(ctx context.Context, subj string, v any) error {
	if b == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(subj, data, nats.Context(ctx))
	return err
}
