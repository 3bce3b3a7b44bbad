package events

// EventPublisher is the write side of the bus.
type EventPublisher interface {
	Publish(event Event)
}

// Compile-time verification that *Bus implements EventPublisher
var _ EventPublisher = (*Bus)(nil)
