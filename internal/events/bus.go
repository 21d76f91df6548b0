// Package events provides a process-wide invalidation signal bus.
// Publishers announce that a data region changed; subscribers re-query
// their stores. Signals carry no payload.
package events

import "sync"

// Topic identifies a signal channel. The set of topics is closed.
type Topic string

const (
	// TopicSyncStarted fires when an orchestrator cycle begins.
	TopicSyncStarted Topic = "sync-started"

	// TopicSyncCompleted fires when an orchestrator cycle finishes,
	// successfully or not. It never fires for no-op cycles.
	TopicSyncCompleted Topic = "sync-completed"

	// TopicInvoicesUpdated fires when invoice state may have changed.
	TopicInvoicesUpdated Topic = "invoices-updated"

	// TopicCollectionsUpdated fires when collection state may have changed.
	TopicCollectionsUpdated Topic = "collections-updated"
)

// subscriberBuffer bounds each subscription channel. A subscriber that
// falls further behind loses signals rather than blocking publishers;
// a lost signal is harmless because consumers re-pull full state.
const subscriberBuffer = 4

// Bus is a typed publish/subscribe channel for invalidation signals.
// The zero value is not usable; use NewBus.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]chan Topic
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Topic]map[int]chan Topic),
	}
}

// Subscribe registers interest in a topic. The returned channel
// receives the topic each time it is published. The cancel function
// removes the subscription and closes the channel.
func (b *Bus) Subscribe(topic Topic) (<-chan Topic, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Topic, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Topic)
	}
	b.subs[topic][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[topic][id]; ok {
			delete(b.subs[topic], id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers a signal to every subscriber of the topic.
// Publish never blocks: a full subscriber channel is skipped.
func (b *Bus) Publish(topic Topic) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- topic:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
// Publish and Subscribe become no-ops afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
	}
}
