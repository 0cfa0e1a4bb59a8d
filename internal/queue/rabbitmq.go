package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchangeName is the direct exchange events are published to
	DefaultExchangeName = "cinemate_events"
	// DefaultQueueName is the queue the stats worker consumes
	DefaultQueueName = "cinemate_interaction_events"
	// DefaultDLQName receives events the worker rejected
	DefaultDLQName = "cinemate_interaction_events_dlq"

	routingKeyEvents = "events"
	routingKeyDLQ    = "dlq"
)

var (
	_ EventPublisher = (*RabbitMQBus)(nil)
	_ EventConsumer  = (*RabbitMQBus)(nil)
	_ DLQPurger      = (*RabbitMQBus)(nil)
)

// RabbitMQBus publishes and consumes events over RabbitMQ
type RabbitMQBus struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	mu           sync.Mutex // amqp channels are not safe for concurrent publishing
	queueName    string
	dlqName      string
	exchangeName string
}

// NewRabbitMQBus connects and declares the exchange, queue and dead letter queue
func NewRabbitMQBus(amqpURL string) (*RabbitMQBus, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	bus := &RabbitMQBus{
		conn:         conn,
		channel:      ch,
		queueName:    DefaultQueueName,
		dlqName:      DefaultDLQName,
		exchangeName: DefaultExchangeName,
	}
	if err := bus.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup queues: %w", err)
	}
	return bus, nil
}

// setup declares the topology: one durable direct exchange, the event queue
// dead-lettering into the DLQ through the same exchange.
func (b *RabbitMQBus) setup() error {
	if err := b.channel.ExchangeDeclare(
		b.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := b.channel.QueueDeclare(b.dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := b.channel.QueueBind(b.dlqName, routingKeyDLQ, b.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    b.exchangeName,
		"x-dead-letter-routing-key": routingKeyDLQ,
	}
	if _, err := b.channel.QueueDeclare(b.queueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := b.channel.QueueBind(b.queueName, routingKeyEvents, b.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}
	return nil
}

// Publish sends event as a persistent JSON message
func (b *RabbitMQBus) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.channel.PublishWithContext(ctx, b.exchangeName, routingKeyEvents, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Consume delivers events on a dedicated channel with the given prefetch
func (b *RabbitMQBus) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	consumeCh, err := b.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}
	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		b.queueName,
		"",    // consumer tag (auto-generated)
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan *Message, max(prefetchCount, 1))
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() { _ = consumeCh.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- errors.New("delivery channel closed")
					return
				}

				var event Event
				if err := json.Unmarshal(delivery.Body, &event); err != nil {
					// Undecodable: dead-letter it
					_ = delivery.Nack(false, false)
					select {
					case errChan <- fmt.Errorf("failed to unmarshal event: %w", err):
					default:
					}
					continue
				}

				msg := &Message{
					Event:       &event,
					DeliveryTag: delivery.DeliveryTag,
					Acker:       consumeCh,
				}
				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// PurgeOlderThan drops dead-lettered events whose timestamp is older than
// retention. The DLQ is FIFO, so it stops at the first newer event.
func (b *RabbitMQBus) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)

	b.mu.Lock()
	defer b.mu.Unlock()

	purged := 0
	for {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		d, ok, err := b.channel.Get(b.dlqName, false)
		if err != nil {
			return purged, fmt.Errorf("failed to read DLQ: %w", err)
		}
		if !ok {
			return purged, nil
		}
		if !d.Timestamp.IsZero() && d.Timestamp.After(cutoff) {
			_ = d.Nack(false, true)
			return purged, nil
		}
		if err := d.Ack(false); err != nil {
			return purged, fmt.Errorf("failed to ack DLQ message: %w", err)
		}
		purged++
	}
}

// HealthCheck reports whether the connection and channel are open
func (b *RabbitMQBus) HealthCheck(_ context.Context) error {
	if b.conn == nil || b.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	if b.channel == nil || b.channel.IsClosed() {
		return errors.New("rabbitmq channel closed")
	}
	return nil
}

// Close closes the channel and the connection
func (b *RabbitMQBus) Close() error {
	var err error
	if b.channel != nil {
		err = b.channel.Close()
	}
	if b.conn != nil {
		if closeErr := b.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
