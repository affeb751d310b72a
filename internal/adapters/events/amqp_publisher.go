package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// amqpChannel is the part of *amqp.Channel the publisher needs
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher publishes booking events to one durable queue per event type
type AMQPPublisher struct {
	ch     amqpChannel
	closer func() error
	mu     sync.Mutex
}

// eventQueues lists the queues declared up front
var eventQueues = []entities.BookingEventType{
	entities.BookingEventTypeCreated,
	entities.BookingEventTypeCancelled,
	entities.BookingEventTypeClass,
}

// NewAMQPPublisher declares the event queues and returns a publisher. closer is called
// by Close and may be nil.
func NewAMQPPublisher(ch amqpChannel, closer func() error) (providers.BookingEventPublisher, error) {
	for _, q := range eventQueues {
		if _, err := ch.QueueDeclare(string(q), true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}
	return &AMQPPublisher{ch: ch, closer: closer}, nil
}

// Publish publishes an event as a persistent message routed to its type's queue
func (p *AMQPPublisher) Publish(ctx context.Context, event *entities.BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    time.Now().UTC(),
		Type:         string(event.EventType),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", string(event.EventType), false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", event.EventType, err)
	}

	log.Debug().Str("queue", string(event.EventType)).Str("event_id", event.ID).Msg("Published booking event")
	return nil
}

// Close releases the channel and connection
func (p *AMQPPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
