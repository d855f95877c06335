package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/s4nngr10r/tgexp/config"
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/metrics"
)

// Module provides the activity event publisher for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewActivityPublisherFx),
)

// NewActivityPublisherFx creates a Kafka backed publisher, or a noop one
// when no brokers are configured
func NewActivityPublisherFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) (domain.ActivityPublisher, error) {
	if len(kafkaCfg.Brokers) == 0 {
		logger.Debug().Msg("KAFKA_BROKERS not set, activity events are dropped")
		return NoopPublisher{}, nil
	}

	producer, err := NewActivityProducer(ProducerConfig{
		Brokers: kafkaCfg.Brokers,
		Topic:   kafkaCfg.Topic,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close(ctx)
		},
	})

	return producer, nil
}
