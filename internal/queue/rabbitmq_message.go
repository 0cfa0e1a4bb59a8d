package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message wraps an Event with its delivery information
type Message struct {
	Event       *Event
	DeliveryTag uint64
	Acker       amqp.Acknowledger
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	return m.Acker.Ack(m.DeliveryTag, false)
}

// Nack rejects the message; without requeue it is dead-lettered
func (m *Message) Nack(requeue bool) error {
	return m.Acker.Nack(m.DeliveryTag, false, requeue)
}

// GetEvent returns the decoded event
func (m *Message) GetEvent() *Event {
	return m.Event
}
