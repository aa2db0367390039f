package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/floatlab/argo-insight/internal/domain"
	"github.com/floatlab/argo-insight/internal/observability"
)

// Request is one recommendation request: the records to visualize, the
// requesting user's profession, and their free-text intent.
type Request struct {
	Records []domain.RawRecord `json:"records"`
	Persona string             `json:"profession"`
	Intent  string             `json:"intent"`
}

// Recommendation is the ranked output for one request.
type Recommendation struct {
	ID          string             `json:"id"`
	Persona     domain.Persona     `json:"profession"`
	Flags       domain.IntentFlags `json:"intent_flags"`
	Charts      []domain.ChartSpec `json:"charts"`
	KPIs        domain.KPISummary  `json:"kpis"`
	RecordCount int                `json:"record_count"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Engine runs the normalize, classify, generate, rank, aggregate pass.
type Engine struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Engine with the given observability.
func New(logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{logger: logger, metrics: metrics}
}

// Recommend produces ranked chart specs and KPIs for one request.
// It never fails: malformed records and unknown personas degrade per the
// normalization and persona fallback rules rather than erroring.
func (e *Engine) Recommend(ctx context.Context, req Request) Recommendation {
	start := time.Now()

	persona := domain.ParsePersona(req.Persona)
	flags := domain.ClassifyIntent(req.Intent)
	dataset := domain.NormalizeRecords(req.Records)

	charts := domain.GenerateCharts(dataset, persona, flags)
	charts = domain.RankCharts(charts, flags)
	kpis := domain.AggregateKPIs(dataset)

	for _, c := range charts {
		e.metrics.ChartsGenerated.WithLabelValues(string(c.Kind)).Inc()
	}
	e.metrics.RecommendationsTotal.Inc()
	e.metrics.DatasetSize.Observe(float64(len(dataset)))
	e.metrics.RecommendDuration.Observe(time.Since(start).Seconds())

	rec := Recommendation{
		ID:          uuid.NewString(),
		Persona:     persona,
		Flags:       flags,
		Charts:      charts,
		KPIs:        kpis,
		RecordCount: len(dataset),
		GeneratedAt: domain.Now().UTC(),
	}

	e.logger.DebugContext(ctx, "recommendation generated",
		"id", rec.ID,
		"profession", persona,
		"records", len(dataset),
		"charts", len(charts),
	)
	return rec
}

// CheckReadiness reports whether the engine can serve requests. The engine
// holds no external connections, so it is ready as soon as it exists.
func (e *Engine) CheckReadiness(_ context.Context) error {
	return nil
}
