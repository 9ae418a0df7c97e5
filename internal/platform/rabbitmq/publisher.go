package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends JSON payloads to a single durable queue.
type Publisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewPublisher(conn *amqp.Connection, queueName string) *Publisher {
	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *Publisher) Queue() string {
	return p.queueName
}

func (p *Publisher) Publish(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload failed: %w", p.queueName, err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := declare(ch, p.queueName); err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish to %s failed: %w", p.queueName, err)
	}
	return nil
}
