package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/wintercup/portal/internal/domain"
)

// AllTopics subscribes to every published event.
const AllTopics = "*"

// Sink receives a copy of every published event (e.g. a Kafka forwarder).
type Sink interface {
	Forward(e domain.Event)
}

// Subscription is a registered listener.
type Subscription struct {
	ID    string
	Topic string
	C     <-chan domain.Event
	send  chan domain.Event
}

// Bus fans state-change events out to view subscribers, keyed by topic.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscription // topic -> subID -> sub
	sinks  []Sink
	buffer int
	logger *slog.Logger
	closed bool
}

// NewBus creates a bus whose subscriptions buffer up to buffer events.
func NewBus(buffer int, logger *slog.Logger, sinks ...Sink) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	return &Bus{
		topics: make(map[string]map[string]*Subscription),
		sinks:  sinks,
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a listener for topic (or AllTopics).
func (b *Bus) Subscribe(topic string) *Subscription {
	ch := make(chan domain.Event, b.buffer)
	sub := &Subscription{ID: uuid.New().String(), Topic: topic, C: ch, send: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*Subscription)
	}
	b.topics[topic][sub.ID] = sub
	return sub
}

// Unsubscribe removes the listener and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[sub.Topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	close(sub.send)
	if len(subs) == 0 {
		delete(b.topics, sub.Topic)
	}
}

// Publish delivers e to topic and wildcard subscribers without blocking.
// A subscriber with a full buffer misses the event.
func (b *Bus) Publish(e domain.Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	for _, topic := range []string{e.Topic, AllTopics} {
		for _, sub := range b.topics[topic] {
			select {
			case sub.send <- e:
			default:
				b.logger.Warn("event subscriber buffer full", "sub_id", sub.ID, "topic", e.Topic, "type", e.Type)
			}
		}
	}
	b.mu.RUnlock()

	for _, s := range b.sinks {
		s.Forward(e)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, subs := range b.topics {
		n += len(subs)
	}
	return n
}

// Close unsubscribes everyone; later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for topic, subs := range b.topics {
		for _, sub := range subs {
			close(sub.send)
		}
		delete(b.topics, topic)
	}
}
