package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"zipfit/internal/model"
)

type MessageCreator interface {
	Create(ctx context.Context, message *model.ChatMessage) error
}

// PersistMessage decodes a chat message and stores it. Redelivered messages
// are absorbed by the unique (chat_id, sequence) key.
func PersistMessage(repo MessageCreator) HandleFunc {
	return func(ctx context.Context, body []byte) error {
		var msg model.ChatMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("decode chat message failed: %w", err)
		}
		if msg.ChatID == 0 || msg.Sequence <= 0 {
			return fmt.Errorf("chat message missing chat id or sequence")
		}
		msg.ID = 0
		return repo.Create(ctx, &msg)
	}
}

func NewMessagePersistWorker(conn *amqp.Connection, repo MessageCreator, queueName string) *Consumer {
	return NewConsumer(conn, queueName, "message persist worker", PersistMessage(repo))
}
