package queue

import "context"

// NoopPublisher discards events; used when no broker is configured
type NoopPublisher struct{}

// Publish drops the event
func (NoopPublisher) Publish(context.Context, *Event) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

// HealthCheck always succeeds
func (NoopPublisher) HealthCheck(context.Context) error { return nil }
