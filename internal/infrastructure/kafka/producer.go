package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

// ActivityProducer publishes activity events to Kafka using an async producer.
// Events are keyed by account id so one account's events stay ordered.
type ActivityProducer struct {
	producer  sarama.AsyncProducer
	topic     string
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	closed    bool
	closeMu   sync.RWMutex
}

// ProducerConfig holds configuration for the activity producer
type ProducerConfig struct {
	Brokers    []string
	Topic      string
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	MaxRetries int
}

// NewActivityProducer creates an async Kafka producer for activity events
func NewActivityProducer(cfg ProducerConfig) (*ActivityProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = cfg.MaxRetries
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.ClientID = "tgexp-activity-producer"
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := newActivityProducer(producer, cfg.Topic, cfg.Logger, cfg.Metrics)

	cfg.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer initialized successfully")

	return p, nil
}

func newActivityProducer(producer sarama.AsyncProducer, topic string, logger zerolog.Logger, m *metrics.Metrics) *ActivityProducer {
	p := &ActivityProducer{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "activity_producer").Logger(),
		metrics:  m,
	}

	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()
	return p
}

// Publish queues an activity event. Delivery failures are reported
// asynchronously through logs and metrics.
func (p *ActivityProducer) Publish(ctx context.Context, event domain.ActivityEvent) error {
	if event.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return fmt.Errorf("producer is closed")
	}

	value, err := encodeEvent(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.AccountID),
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.Timestamp,
	}

	select {
	case p.producer.Input() <- msg:
		p.logger.Debug().
			Str("type", event.Type).
			Str("account_id", event.AccountID).
			Msg("activity event queued for sending to Kafka")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while sending message: %w", ctx.Err())
	}
}

func encodeEvent(event domain.ActivityEvent) ([]byte, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity event: %w", err)
	}
	return value, nil
}

func (p *ActivityProducer) handleSuccesses() {
	defer p.wg.Done()

	for msg := range p.producer.Successes() {
		if p.metrics != nil {
			p.metrics.KafkaMessagesProduced.Inc()
		}
		p.logger.Debug().
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Message sent to Kafka successfully")
	}
}

func (p *ActivityProducer) handleErrors() {
	defer p.wg.Done()

	for producerErr := range p.producer.Errors() {
		if p.metrics != nil {
			p.metrics.KafkaProduceErrors.Inc()
		}
		p.logger.Error().
			Err(producerErr.Err).
			Str("topic", producerErr.Msg.Topic).
			Msg("Failed to send message to Kafka")
	}
}

// Close flushes pending events and stops the producer. Safe to call more
// than once.
func (p *ActivityProducer) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closeMu.Lock()
		p.closed = true
		p.closeMu.Unlock()

		var errs []error
		if err := p.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close failed: %w", err))
		}

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("timeout waiting for handlers to finish: %w", ctx.Err()))
		}

		p.closeErr = errors.Join(errs...)
		if p.closeErr != nil {
			p.logger.Error().Err(p.closeErr).Msg("Kafka producer closed with errors")
		} else {
			p.logger.Info().Msg("Kafka producer closed successfully")
		}
	})
	return p.closeErr
}

// IsHealthy reports whether the producer still accepts events
func (p *ActivityProducer) IsHealthy() bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	return p.producer != nil && !p.closed
}

// NoopPublisher drops activity events. Used when no brokers are configured.
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(context.Context, domain.ActivityEvent) error {
	return nil
}

var (
	_ domain.ActivityPublisher = (*ActivityProducer)(nil)
	_ domain.ActivityPublisher = NoopPublisher{}
)
