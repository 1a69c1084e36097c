// Package eventbus is an in-process typed publish/subscribe bus used by
// the backlog adapter to announce record mutations to whoever is listening
// (spec §4.14). The CLI subscribes only an error logger; the indexer is
// refreshed through sync.ProjectionInvalidator, not through this bus.
package eventbus

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one notification published on the bus.
type Event struct {
	Type    string // e.g. "task.created", "task.status.changed", "cycle.created"
	Payload any
}

// Handler receives events. A handler that returns an error only has that
// error logged by the bus — handler failures never propagate back to the
// publisher (spec §4.14: publishing must not fail because a subscriber
// did).
type Handler func(Event) error

// Subscription is the handle returned by Subscribe, used to Unsubscribe
// later.
type Subscription struct {
	id      string
	topic   string
	handler Handler
}

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

// ErrorLogger receives errors returned by handlers; defaults to a no-op.
// cmd/gitgov wires this to applog so handler failures are observable
// without becoming fatal.
type ErrorLogger func(topic string, err error)

// Bus is the concrete in-process pub/sub implementation.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Subscription
	onErr  ErrorLogger
}

// New constructs an empty Bus. onErr may be nil, in which case handler
// errors are silently discarded.
func New(onErr ErrorLogger) *Bus {
	if onErr == nil {
		onErr = func(string, error) {}
	}
	return &Bus{subs: make(map[string][]Subscription), onErr: onErr}
}

// Subscribe registers handler for topic (or Wildcard for every event) and
// returns a Subscription usable with Unsubscribe.
func (b *Bus) Subscribe(topic string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := Subscription{id: uuid.NewString(), topic: topic, handler: handler}
	b.subs[topic] = append(b.subs[topic], sub)
	return sub
}

// Unsubscribe removes a previously returned Subscription. Unsubscribing
// twice, or a subscription from a different bus, is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.topic]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every subscriber of its type plus every
// wildcard subscriber, over a snapshot of the subscriber list taken under
// lock — a handler that subscribes or unsubscribes during delivery never
// races with the snapshot it's being called from.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	snapshot := make([]Subscription, 0, len(b.subs[event.Type])+len(b.subs[Wildcard]))
	snapshot = append(snapshot, b.subs[event.Type]...)
	snapshot = append(snapshot, b.subs[Wildcard]...)
	b.mu.RUnlock()

	for _, sub := range snapshot {
		if err := sub.handler(event); err != nil {
			b.onErr(event.Type, err)
		}
	}
}
