package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/floatlab/argo-insight/internal/config"
	"github.com/floatlab/argo-insight/internal/engine"
)

// pollTimeout bounds how long ExtractBatch waits for messages beyond the
// first one, so partially filled batches still flush promptly.
const pollTimeout = 250 * time.Millisecond

// Reader consumes recommendation requests from the source topic.
// It implements engine.BatchExtractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSourceTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger}
}

// ExtractBatch reads up to batchSize messages. The first fetch blocks on
// the caller's context; subsequent fetches use a short poll timeout so a
// quiet topic returns a partial batch instead of stalling.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]engine.StreamMessage, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]engine.StreamMessage, 0, batchSize)
	batch = append(batch, r.mapMessage(first))

	for len(batch) < batchSize {
		pollCtx, cancel := context.WithTimeout(ctx, pollTimeout)
		msg, err := r.reader.FetchMessage(pollCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			if ctx.Err() != nil {
				// Deliver what we have; the pipeline handles shutdown.
				break
			}
			r.logger.Warn("fetch message failed mid-batch", "error", err)
			break
		}
		batch = append(batch, r.mapMessage(msg))
	}

	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage converts a Kafka message into a stream message with a commit
// closure bound to this reader's consumer group.
func (r *Reader) mapMessage(msg kafkago.Message) engine.StreamMessage {
	return engine.StreamMessage{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}
