package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandleFunc processes one delivery body. A non-nil error Nacks the
// delivery without requeue.
type HandleFunc func(ctx context.Context, body []byte) error

// Consumer reads one durable queue, one delivery at a time.
type Consumer struct {
	conn      *amqp.Connection
	queueName string
	name      string
	handle    HandleFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, queueName, name string, handle HandleFunc) *Consumer {
	return &Consumer{
		conn:      conn,
		queueName: queueName,
		name:      name,
		handle:    handle,
	}
}

func (w *Consumer) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open %s channel failed: %w", w.name, err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare %s queue failed: %w", w.name, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set %s qos failed: %w", w.name, err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume %s queue failed: %w", w.name, err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					log.Printf("%s handle delivery failed: %v", w.name, err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *Consumer) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
