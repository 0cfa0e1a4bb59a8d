package queue

import (
	"context"
	"time"
)

// MessageInterface is a consumed event awaiting acknowledgement
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetEvent() *Event
}

// EventPublisher sends interaction events to the bus
type EventPublisher interface {
	// Publish sends one event; implementations must not block past ctx
	Publish(ctx context.Context, event *Event) error

	// Close releases the connection
	Close() error

	// HealthCheck verifies the connection is usable
	HealthCheck(ctx context.Context) error
}

// EventConsumer receives events from the bus
type EventConsumer interface {
	// Consume delivers messages until ctx is cancelled or the connection drops.
	// Prefetch bounds how many unacknowledged messages this consumer holds.
	// The caller acknowledges each message.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered events older than a retention period
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
