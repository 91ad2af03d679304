package infrastructure

import (
	"arenaapp/domain/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// Used by the migrate and init-arena commands where nobody listens.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
