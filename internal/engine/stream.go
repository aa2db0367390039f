package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/floatlab/argo-insight/internal/observability"
)

// StreamMessage is one raw request consumed from the source topic, with
// enough provenance to log skips and commit its offset independently.
type StreamMessage struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte

	// Commit acknowledges this message with the source. Nil when the
	// source does not track offsets.
	Commit func(ctx context.Context) error
}

// ResultMessage is one serialized recommendation bound for the sink topic.
type ResultMessage struct {
	Key         []byte
	Value       []byte
	Persona     string
	GeneratedAt time.Time
}

// BatchExtractor reads up to batchSize requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]StreamMessage, error)
}

// BatchLoader writes recommendations to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, results []ResultMessage) error
}

// Pipeline consumes recommendation requests in batches, runs the engine
// over each, and produces the results.
type Pipeline struct {
	extractor BatchExtractor
	engine    *Engine
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// NewPipeline creates a Pipeline with the given stages and observability.
func NewPipeline(e BatchExtractor, eng *Engine, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		engine:    eng,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has produced at least one
// recommendation, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any requests yet")
	}
	return nil
}

// Run executes the batch consume-recommend-produce loop until the context
// is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("stream pipeline started", "batch_size", p.batchSize)
	p.metrics.StreamRunning.Set(1)
	defer p.metrics.StreamRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stream pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one consume-recommend-produce cycle. Returns false if
// the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.RequestsConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.recommendAndLoad(ctx, batch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// recommendAndLoad runs the engine over each request in the batch, loads
// the successes, and commits offsets. A request that fails to decode is
// skipped and committed so it is not re-consumed. Returns the number of
// successfully loaded results and false if the pipeline should stop.
func (p *Pipeline) recommendAndLoad(ctx context.Context, batch []StreamMessage, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	results := make([]ResultMessage, 0, len(batch))
	consumed := make([]StreamMessage, 0, len(batch))

	for _, msg := range batch {
		out, err := p.transform(ctx, msg)
		if err != nil {
			p.logger.Warn("request rejected, skipping message",
				"error", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, msg)
			continue
		}
		results = append(results, out)
		consumed = append(consumed, msg)
	}

	if len(results) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, results); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(results))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.RecommendationsProduced.Add(float64(len(results)))

	for _, msg := range consumed {
		p.commitOffset(ctx, msg)
	}

	return len(results), true
}

// transform decodes one request, runs the engine, and serializes the
// recommendation. The result key is the recommendation ID unless the
// request carried a key of its own.
func (p *Pipeline) transform(ctx context.Context, msg StreamMessage) (ResultMessage, error) {
	var req Request
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return ResultMessage{}, fmt.Errorf("decode request: %w", err)
	}

	rec := p.engine.Recommend(ctx, req)

	value, err := json.Marshal(rec)
	if err != nil {
		return ResultMessage{}, fmt.Errorf("encode recommendation: %w", err)
	}

	key := msg.Key
	if len(key) == 0 {
		key = []byte(rec.ID)
	}
	return ResultMessage{
		Key:         key,
		Value:       value,
		Persona:     string(rec.Persona),
		GeneratedAt: rec.GeneratedAt,
	}, nil
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, msg StreamMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
