package events

import (
	"sync"
	"testing"
)

func TestBus_DeliversInOrderWithSequence(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ch, cancel := bus.Subscribe(4)
	defer cancel()

	bus.Publish(Event{Type: EventCacheLoaded})
	bus.Publish(Event{Type: EventCacheMutated, Source: "move_project"})

	first := <-ch
	second := <-ch
	if first.Type != EventCacheLoaded || second.Type != EventCacheMutated {
		t.Errorf("Unexpected order: %v, %v", first.Type, second.Type)
	}
	if second.SequenceID <= first.SequenceID {
		t.Errorf("Expected increasing sequence IDs, got %d then %d", first.SequenceID, second.SequenceID)
	}
	if first.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
	if second.Source != "move_project" {
		t.Errorf("Expected source move_project, got %q", second.Source)
	}
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	_, cancel := bus.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: EventCacheMutated})
	}
	if bus.Dropped() != 4 {
		t.Errorf("Expected 4 dropped events, got %d", bus.Dropped())
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ch, cancel := bus.Subscribe(0)
	if bus.SubscriberCount() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	// publishing after cancel must not panic
	bus.Publish(Event{Type: EventCacheCleared})
}

func TestBus_ConcurrentPublish(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	ch, cancel := bus.Subscribe(100)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: EventCacheMutated})
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i := 0; i < 50; i++ {
		e := <-ch
		if seen[e.SequenceID] {
			t.Fatalf("Duplicate sequence ID %d", e.SequenceID)
		}
		seen[e.SequenceID] = true
	}
}
