package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"afisha/internal/models"
)

// StatsClient talks to the stats service. Callers on the event read path use
// it best-effort: a failure is logged and never aborts the primary request.
type StatsClient struct {
	baseURL    string
	app        string
	httpClient *http.Client
}

type StatsConfig struct {
	BaseURL string
	App     string
	Timeout time.Duration
}

func NewStatsClient(cfg StatsConfig) *StatsClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &StatsClient{
		baseURL: cfg.BaseURL,
		app:     cfg.App,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// AddHit records a page view for the given uri and client ip.
func (sc *StatsClient) AddHit(ctx context.Context, uri, ip string) error {
	hit := models.EndpointHit{
		App:       sc.app,
		URI:       uri,
		IP:        ip,
		Timestamp: models.NewDateTime(time.Now()),
	}

	jsonBody, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("failed to marshal hit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.baseURL+"/hit", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// GetStats fetches hit counts for uris within [start, end].
func (sc *StatsClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(models.DateTimeLayout))
	params.Set("end", end.Format(models.DateTimeLayout))
	if len(uris) > 0 {
		params.Set("uris", strings.Join(uris, ","))
	}
	if unique {
		params.Set("unique", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sc.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var stats []models.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return stats, nil
}
