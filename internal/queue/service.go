package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/mahirjain10/image-resolution-worker/config"
	"github.com/mahirjain10/image-resolution-worker/internal/dedupe"
	queueErrors "github.com/mahirjain10/image-resolution-worker/internal/queue/errors"
	"github.com/mahirjain10/image-resolution-worker/internal/queue/models"
	"github.com/mahirjain10/image-resolution-worker/internal/transcode"
	"github.com/mahirjain10/image-resolution-worker/internal/types"
	"github.com/mahirjain10/image-resolution-worker/internal/utils"
)

type Transcoder interface {
	Process(ctx context.Context, event types.S3Event) (transcode.Report, error)
}

// RabbitMqService consumes S3 bucket notifications from a queue, runs each
// through the transcoder and publishes the outcome to the status exchange.
type RabbitMqService struct {
	config     *config.Config
	transcoder Transcoder
	claimer    dedupe.Claimer
	publisher  StatusPublisher
	logger     zerolog.Logger

	connMu sync.Mutex
	conn   *amqp.Connection
}

// NewRabbitMqService wires the service. A nil claimer disables dedupe and a
// nil publisher is replaced by an AMQP publisher on Start.
func NewRabbitMqService(conn *amqp.Connection, cfg *config.Config, transcoder Transcoder, claimer dedupe.Claimer, publisher StatusPublisher, logger zerolog.Logger) *RabbitMqService {
	if claimer == nil {
		claimer = dedupe.NoopClaimer{}
	}
	return &RabbitMqService{
		conn:       conn,
		config:     cfg,
		transcoder: transcoder,
		claimer:    claimer,
		publisher:  publisher,
		logger:     logger,
	}
}

// openChannel opens a channel on the shared connection, redialing first if
// the broker dropped it.
func (s *RabbitMqService) openChannel() (*amqp.Channel, error) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil || s.conn.IsClosed() {
		conn, err := NewRabbitMQClient(s.config.RabbitMqURL)
		if err != nil {
			return nil, err
		}
		s.conn = conn
	}
	return NewChannel(s.conn)
}

// ProcessMessage handles one delivery. A returned models.ProcessingError
// tells the consumer whether to requeue; a nil error means ack.
func (s *RabbitMqService) ProcessMessage(ctx context.Context, d amqp.Delivery) error {
	s.logger.Debug().Bytes("body", d.Body).Msg("received message")

	var event types.S3Event
	if err := utils.ParseJSON(d.Body, &event); err != nil {
		return models.ProcessingError{Err: fmt.Errorf("%w: %w", types.ErrEventShape, err), Requeue: false}
	}
	rec, err := event.Source()
	if err != nil {
		return models.ProcessingError{Err: err, Requeue: false}
	}

	bucket := rec.S3.Bucket.Name
	eventID := dedupe.EventID(bucket, rec.S3.Object.Key, rec.S3.Object.Sequencer)
	if eventID != "" {
		claimed, err := s.claimer.Claim(ctx, eventID)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("event", eventID).Msg("dedupe unavailable, processing anyway")
		case !claimed:
			s.logger.Info().Str("event", eventID).Msg("duplicate delivery, skipping")
			return nil
		}
	}

	report, err := s.transcoder.Process(ctx, event)
	if err != nil {
		s.release(ctx, eventID)
		return models.ProcessingError{Err: err, Requeue: false}
	}
	if report.Status == types.StatusError {
		// Nothing was written, let a redelivery try again.
		s.release(ctx, eventID)
	}

	return s.publishStatus(ctx, report)
}

func (s *RabbitMqService) release(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}
	if err := s.claimer.Release(ctx, eventID); err != nil {
		s.logger.Warn().Err(err).Str("event", eventID).Msg("failed to release event claim")
	}
}

func (s *RabbitMqService) publishStatus(ctx context.Context, report transcode.Report) error {
	if s.publisher == nil {
		return nil
	}
	statusData := utils.InitStatusData(report.RunID, report.Bucket, report.Key, report.Status, report.Written(), report.Failed(), statusErrorMessage(report))
	statusMessage := utils.InitStatusMessage(statusData)
	if err := s.publisher.Publish(ctx, statusMessage); err != nil {
		if IsFatalError(err) {
			return fmt.Errorf("fatal: cannot publish status: %w", err)
		}
		s.logger.Warn().Err(err).Str("key", report.Key).Msg("failed to publish status")
	}
	return nil
}

func statusErrorMessage(report transcode.Report) string {
	switch {
	case report.Status == types.StatusError && errors.Is(report.Err, transcode.ErrFetch):
		return queueErrors.ErrDownload
	case report.Status == types.StatusError:
		return queueErrors.ErrKeyDecode
	case len(report.Failed()) > 0:
		return queueErrors.ErrPartial
	default:
		return ""
	}
}

// handleDelivery processes d and settles it with the broker.
func (s *RabbitMqService) handleDelivery(ctx context.Context, d amqp.Delivery, log zerolog.Logger) {
	// In-flight runs finish even when shutdown starts.
	if err := s.ProcessMessage(context.WithoutCancel(ctx), d); err != nil {
		log.Error().Err(err).Msg("error processing message")

		var procErr models.ProcessingError
		if errors.As(err, &procErr) {
			_ = d.Nack(false, procErr.Requeue)
			return
		}
		_ = d.Nack(false, IsTransientError(err))
		return
	}
	_ = d.Ack(false)
}

func (s *RabbitMqService) consume(ctx context.Context, worker int) {
	queueName := s.config.RabbitMqQueue
	log := s.logger.With().Str("queue", queueName).Int("worker", worker).Logger()

	var consumerCh *amqp.Channel
	defer func() {
		if consumerCh != nil {
			consumerCh.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		default:
		}

		if consumerCh == nil || consumerCh.IsClosed() {
			newCh, err := s.openChannel()
			if err != nil {
				log.Error().Err(err).Msg("failed to create channel")
				time.Sleep(5 * time.Second)
				continue
			}
			consumerCh = newCh
			log.Debug().Msg("channel created")
		}

		msgs, err := NewQueueConsumer(consumerCh, queueName)
		if err != nil {
			log.Error().Err(err).Msg("failed to start consumer")
			consumerCh.Close()
			consumerCh = nil
			time.Sleep(5 * time.Second)
			continue
		}

		log.Info().Msg("worker started, waiting for messages")

		channelClosed := false
		for !channelClosed {
			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down")
				return
			case d, ok := <-msgs:
				if !ok {
					log.Warn().Msg("channel closed, will recreate")
					consumerCh = nil
					channelClosed = true
					time.Sleep(2 * time.Second)
					break
				}
				s.handleDelivery(ctx, d, log)
			}
		}
	}
}

// Start declares the notification queue, runs RabbitMqWorkers consumers
// and blocks until ctx is cancelled and every consumer has returned.
func (s *RabbitMqService) Start(ctx context.Context) error {
	ch, err := s.openChannel()
	if err != nil {
		return err
	}
	if _, err := NewQueue(ch, s.config.RabbitMqQueue); err != nil {
		ch.Close()
		return err
	}
	ch.Close()
	s.logger.Info().Str("queue", s.config.RabbitMqQueue).Msg("queue declared")

	var amqpPublisher *AmqpPublisher
	if s.publisher == nil {
		amqpPublisher = NewAmqpPublisher(s.openChannel)
		s.publisher = amqpPublisher
	}

	var wg sync.WaitGroup
	for i := range s.config.RabbitMqWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.consume(ctx, i+1)
		}()
	}

	<-ctx.Done()
	s.logger.Info().Msg("shutting down all consumers gracefully")
	wg.Wait()

	if amqpPublisher != nil {
		_ = amqpPublisher.Close()
	}
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn != nil && !s.conn.IsClosed() {
		return s.conn.Close()
	}
	return nil
}
