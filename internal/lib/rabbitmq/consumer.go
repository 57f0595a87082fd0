package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/sibintb/submanager/internal/lib/sl"
)

// maxInFlight bounds the handlers running at once.
const maxInFlight = 10

// Handler processes one message body. A returned error requeues the message.
type Handler func(ctx context.Context, body []byte) error

// ConsumeMessages delivers messages from queue to handler until ctx is done
// or the channel closes, then waits for running handlers.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queue string, log *slog.Logger, handler Handler) error {
	const op = "rabbitmq.ConsumeMessages"

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	Dispatch(ctx, deliveries, log, handler)
	return nil
}

// Dispatch runs handler for each delivery with bounded concurrency, acking
// on success and requeueing on failure.
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, log *slog.Logger, handler Handler) {
	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				settle(ctx, d.Acknowledger, d.DeliveryTag, d.Body, log, handler)
			}(d)
		}
	}
}

func settle(ctx context.Context, ack amqp.Acknowledger, tag uint64, body []byte, log *slog.Logger, handler Handler) {
	if err := handler(ctx, body); err != nil {
		log.Error("failed to handle message", sl.Err(err))
		if ack == nil {
			return
		}
		if nackErr := ack.Nack(tag, false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ack == nil {
		return
	}
	if ackErr := ack.Ack(tag, false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
