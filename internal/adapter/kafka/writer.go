package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/floatlab/argo-insight/internal/config"
	"github.com/floatlab/argo-insight/internal/engine"
)

// Writer produces recommendations to the sink topic.
// It implements engine.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes multiple recommendations to the sink topic in a
// single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, results []engine.ResultMessage) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msgs[i] = serializeToMessage(results[i])
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage maps a result onto a Kafka message, carrying the
// profession and generation time as headers for downstream routing.
func serializeToMessage(res engine.ResultMessage) kafkago.Message {
	return kafkago.Message{
		Key:   res.Key,
		Value: res.Value,
		Headers: []kafkago.Header{
			{Key: "profession", Value: []byte(res.Persona)},
			{Key: "generated_at", Value: []byte(res.GeneratedAt.Format(time.RFC3339))},
		},
	}
}
