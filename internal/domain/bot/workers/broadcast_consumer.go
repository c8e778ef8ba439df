// Package workers contains background workers for the bot domain
package workers

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/OtabekovsProject/bot-media/config"
	kafkaHandlers "github.com/OtabekovsProject/bot-media/internal/domain/bot/delivery/kafka"
)

// messageReader is the part of *kafka.Reader the consumer uses
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BroadcastConsumer consumes broadcast requests from Kafka
type BroadcastConsumer struct {
	reader   messageReader
	handlers *kafkaHandlers.Handlers
	logger   zerolog.Logger
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewBroadcastConsumer creates new Kafka consumer for broadcast requests
func NewBroadcastConsumer(cfg *config.KafkaConfig, handlers *kafkaHandlers.Handlers, logger zerolog.Logger) *BroadcastConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID + "-broadcast",
		Topic:       cfg.BroadcastTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.BroadcastTopic).
		Msg("Kafka broadcast consumer initialized")

	return newBroadcastConsumer(reader, handlers, logger)
}

func newBroadcastConsumer(reader messageReader, handlers *kafkaHandlers.Handlers, logger zerolog.Logger) *BroadcastConsumer {
	ctx, cancel := context.WithCancel(context.Background())

	return &BroadcastConsumer{
		reader:   reader,
		handlers: handlers,
		logger:   logger,
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts consuming broadcast requests
func (c *BroadcastConsumer) Start() {
	c.logger.Info().Msg("Starting Kafka broadcast consumer...")
	go c.consume()
}

func (c *BroadcastConsumer) consume() {
	defer close(c.done)

	for {
		msg, err := c.reader.FetchMessage(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				c.logger.Info().Msg("Kafka broadcast consumer stopped by context cancellation")
				return
			}
			c.logger.Error().Err(err).Msg("Failed to fetch broadcast request from Kafka")
			continue
		}

		c.logger.Debug().
			Str("topic", msg.Topic).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("Received broadcast request from Kafka")

		// a failed broadcast is committed anyway: re-running would resend to everyone
		if err := c.handlers.HandleBroadcastRequest(c.ctx, msg.Value); err != nil {
			c.logger.Error().Err(err).Msg("Failed to handle broadcast request")
		}

		if err := c.reader.CommitMessages(c.ctx, msg); err != nil {
			c.logger.Error().Err(err).Msg("Failed to commit broadcast request")
		}
	}
}

// Stop stops the consumer gracefully
func (c *BroadcastConsumer) Stop() error {
	c.logger.Info().Msg("Stopping Kafka broadcast consumer...")
	c.cancel()
	<-c.done

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close Kafka broadcast reader")
		return err
	}

	c.logger.Info().Msg("Kafka broadcast consumer stopped successfully")
	return nil
}
