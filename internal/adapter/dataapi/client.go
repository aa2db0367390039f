package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/floatlab/argo-insight/internal/config"
	"github.com/floatlab/argo-insight/internal/domain"
	"github.com/floatlab/argo-insight/internal/observability"
)

// Client fetches record sets from the upstream data API, which accepts a
// SQL query and row limit and returns matching rows as JSON objects.
type Client struct {
	baseURL      string
	defaultLimit int
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewClient creates a data API client from config.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:      cfg.DataAPIURL,
		defaultLimit: cfg.DataAPILimit,
		httpClient: &http.Client{
			Timeout: cfg.DataAPITimeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type queryResponse struct {
	Results []domain.RawRecord `json:"results"`
	Count   int                `json:"count"`
}

// Fetch runs a query against the data API and returns the matching
// records. A non-positive limit uses the configured default.
func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]domain.RawRecord, error) {
	if limit <= 0 {
		limit = c.defaultLimit
	}

	body, err := json.Marshal(queryRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.metrics.DataAPIRequests.Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.DataAPIErrors.Inc()
		return nil, fmt.Errorf("data api request: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.DataAPIDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.DataAPIErrors.Inc()
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("data api error: status %d: %s", resp.StatusCode, errBody)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		c.metrics.DataAPIErrors.Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("data api fetch", "rows", qr.Count, "limit", limit)
	return qr.Results, nil
}
