package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mahirjain10/image-resolution-worker/internal/types"
	"github.com/mahirjain10/image-resolution-worker/internal/utils"
)

const (
	StatusExchange   = "image_processing"
	StatusRoutingKey = "status"
	StatusQueue      = "status_queue"
)

type StatusPublisher interface {
	Publish(ctx context.Context, message *types.StatusMessage) error
}

// AmqpPublisher publishes status messages on its own channel and reopens
// the channel (and redeclares the topology) when the broker closes it.
type AmqpPublisher struct {
	open func() (*amqp.Channel, error)

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAmqpPublisher(open func() (*amqp.Channel, error)) *AmqpPublisher {
	return &AmqpPublisher{open: open}
}

func (p *AmqpPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.open()
	if err != nil {
		return nil, err
	}
	if err := declareStatusTopology(ch); err != nil {
		ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, message *types.StatusMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("status channel is not available: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	serializedMessage, err := utils.SerializeJSON(message)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		StatusExchange,
		StatusRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         serializedMessage,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *AmqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	return p.ch.Close()
}

func declareStatusTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		StatusExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("error while declaring an exchange: %w", err)
	}
	if _, err := NewQueue(ch, StatusQueue); err != nil {
		return err
	}
	if err := ch.QueueBind(StatusQueue, StatusRoutingKey, StatusExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind status queue: %w", err)
	}
	return nil
}
