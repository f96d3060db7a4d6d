package kafka

import (
	"context"
	"log/slog"
	"sort"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/aurora-oval-service/internal/config"
	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// Writer publishes score snapshots to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// Snapshots carry the full score grid.
		BatchBytes: 16 << 20,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the snapshots in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i, e := range events {
		msgs[i] = toMessage(e)
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("snapshots published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

// Close flushes pending writes and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// toMessage converts an output event, with headers in key order so the
// produced message is deterministic.
func toMessage(e domain.OutputEvent) kafkago.Message {
	keys := make([]string, 0, len(e.Headers))
	for k := range e.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(e.Headers[k])}
	}
	return kafkago.Message{Key: e.Key, Value: e.Value, Headers: headers}
}
