// Package kafka contains Kafka repository implementations
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
)

// Producer implements deps.EventPublisher on top of a sarama SyncProducer
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewProducer creates the audit event publisher.
// A no-op publisher is returned when Kafka is disabled.
func NewProducer(cfg *config.KafkaConfig, logger zerolog.Logger) (deps.EventPublisher, error) {
	logger = logger.With().Str("component", "kafka-producer").Logger()

	if !cfg.Enabled {
		logger.Info().Msg("Kafka disabled, audit events will not be published")
		return NopPublisher{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.EventsTopic).Msg("Kafka producer initialized successfully")

	return NewProducerWith(producer, cfg.EventsTopic, logger), nil
}

// NewProducerWith wraps an existing sarama producer
func NewProducerWith(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish implements deps.EventPublisher
func (p *Producer) Publish(ctx context.Context, event *dto.AuditEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(eventKey(event)),
		Value: sarama.ByteEncoder(jsonData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Str("event_type", event.Type).Msg("Failed to send Kafka message")
		return fmt.Errorf("%w: %v", boterrors.ErrEventPublishFailed, err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("event_type", event.Type).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Kafka message sent successfully")

	return nil
}

// eventKey keeps events about the same subject on one partition
func eventKey(event *dto.AuditEvent) string {
	switch {
	case event.UserID != 0:
		return strconv.FormatInt(event.UserID, 10)
	case event.ChannelID != "":
		return event.ChannelID
	default:
		return event.Type
	}
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}

// NopPublisher drops every event
type NopPublisher struct{}

// Publish implements deps.EventPublisher
func (NopPublisher) Publish(context.Context, *dto.AuditEvent) error { return nil }

// Close implements deps.EventPublisher
func (NopPublisher) Close() error { return nil }
