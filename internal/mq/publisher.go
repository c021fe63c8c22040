package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"bikeride/internal/notify"
)

// Channel is the subset of *amqp091.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// NotificationMessage is the JSON body published for every notification.
type NotificationMessage struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipientId"`
	EventType   string         `json:"eventType"`
	Payload     map[string]any `json:"payload"`
	OccurredAt  time.Time      `json:"occurredAt"`
}

// Publisher hands notifications to a broker for out-of-band delivery.
type Publisher struct {
	ch       Channel
	exchange string
}

// NewPublisher creates a new Publisher.
func NewPublisher(ch Channel, exchange string) *Publisher {
	if exchange == "" {
		exchange = NotificationsExchange
	}
	return &Publisher{ch: ch, exchange: exchange}
}

// RoutingKey returns the topic a given event type is published under.
func RoutingKey(eventType string) string {
	return "notification." + eventType
}

// Notify publishes one persistent message per recipient and event.
func (p *Publisher) Notify(ctx context.Context, recipientID, eventType string, payload map[string]any) error {
	msg := NotificationMessage{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		EventType:   eventType,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,            // exchange
		RoutingKey(eventType), // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			MessageId:    msg.ID,
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

var _ notify.Gateway = (*Publisher)(nil)
