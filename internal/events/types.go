package events

import "time"

// EventType indicates what kind of change occurred
type EventType string

const (
	// EventCacheLoaded fires when the cache is replaced wholesale (load, reconcile, reload)
	EventCacheLoaded EventType = "cache_loaded"
	// EventCacheMutated fires on an optimistic patch or a commit patch
	EventCacheMutated EventType = "cache_mutated"
	// EventCacheCleared fires on logout
	EventCacheCleared EventType = "cache_cleared"
)

// Event represents a cache change notification
type Event struct {
	Type       EventType
	Source     string    // operation that caused the change, e.g. "move_project"
	Timestamp  time.Time // When the event occurred
	SequenceID int64     // Monotonically increasing sequence number for ordering
}
