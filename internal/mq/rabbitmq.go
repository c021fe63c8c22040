// Package mq publishes ride events to RabbitMQ.
package mq

import (
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// NotificationsExchange is the topic exchange notifications are published to.
const NotificationsExchange = "notifications"

// Connect dials RabbitMQ, retrying while the broker is not ready, and
// declares the exchange on a fresh channel.
func Connect(url, exchange string, attempts int, delay time.Duration) (*amqp091.Connection, *amqp091.Channel, error) {
	if attempts < 1 {
		attempts = 1
	}

	var conn *amqp091.Connection
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			break
		}
		log.Printf("RabbitMQ not ready, retrying... (%d/%d)", i+1, attempts)
		time.Sleep(delay)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return conn, ch, nil
}
