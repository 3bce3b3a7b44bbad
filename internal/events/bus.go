// Package events is an in-process fan-out of cache change notifications.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the per-subscriber queue length
const DefaultBufferSize = 16

type subscriber struct {
	ch        chan Event
	closeOnce sync.Once
}

// Bus delivers every published event to all current subscribers. A subscriber
// whose queue is full misses the event rather than blocking the publisher.
type Bus struct {
	mu              sync.RWMutex
	subscribers     map[*subscriber]struct{}
	sequenceCounter atomic.Int64
	dropped         atomic.Int64
	now             func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[*subscriber]struct{}),
		now:         time.Now,
	}
}

// Publish stamps the event with a sequence number and fans it out.
func (b *Bus) Publish(event Event) {
	event.SequenceID = b.sequenceCounter.Add(1)
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subscribers {
		select {
		case s.ch <- event:
		default:
			b.dropped.Add(1)
			slog.Debug("event dropped for slow subscriber",
				"event_type", event.Type,
				"sequence", event.SequenceID)
		}
	}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	s := &subscriber{ch: make(chan Event, buffer)}

	b.mu.Lock()
	b.subscribers[s] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subscribers, s)
		b.mu.Unlock()
		s.closeOnce.Do(func() { close(s.ch) })
	}
	return s.ch, cancel
}

// SubscriberCount returns the number of active subscribers
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many deliveries were skipped because a queue was full
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
