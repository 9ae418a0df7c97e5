package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"zipfit/internal/app"
)

type JobProcessor interface {
	Process(ctx context.Context, job app.EmbeddingJob) error
}

// EmbedChunks decodes an embedding job and runs it.
func EmbedChunks(p JobProcessor) HandleFunc {
	return func(ctx context.Context, body []byte) error {
		var job app.EmbeddingJob
		if err := json.Unmarshal(body, &job); err != nil {
			return fmt.Errorf("decode embedding job failed: %w", err)
		}
		return p.Process(ctx, job)
	}
}

func NewEmbeddingWorker(conn *amqp.Connection, p JobProcessor, queueName string) *Consumer {
	return NewConsumer(conn, queueName, "embedding worker", EmbedChunks(p))
}
