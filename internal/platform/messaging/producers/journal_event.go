package producers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/finance-tracker-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// JournalEventProducer writes journal events synchronously so the outbox
// only marks a row processed once the broker acknowledged it.
type JournalEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewJournalEventProducer ensures the event topic exists and opens a writer for it
func NewJournalEventProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*JournalEventProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}

	if err := dialAndEnsureTopic(cfg.Brokers, cfg.EventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure event topic %s exists: %w", cfg.EventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:  kafka.TCP(cfg.Brokers),
		Topic: cfg.EventTopic,
		// Events for one account must stay ordered, so route by key
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return newJournalEventProducer(logger, writer, cfg.EventTopic), nil
}

func newJournalEventProducer(logger *slog.Logger, writer KafkaWriter, topic string) *JournalEventProducer {
	return &JournalEventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Publish writes one event; headers are attached in key order
func (p *JournalEventProducer) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: toKafkaHeaders(headers),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish journal event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish journal event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published journal event", "topic", p.topic, "key", key)
	return nil
}

func (p *JournalEventProducer) Close() error {
	p.logger.Info("Closing journal event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

func toKafkaHeaders(headers map[string]string) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		out = append(out, kafka.Header{Key: k, Value: []byte(headers[k])})
	}
	return out
}

var _ EventPublisher = (*JournalEventProducer)(nil)
