package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeAPIBase = "https://worldtimeapi.org"

// WorldTime implements domain.TimeSource against worldtimeapi.org. The
// location is passed through verbatim; the API accepts Area/City timezone
// identifiers and plain city names that happen to match one.
type WorldTime struct {
	apiBase string
	client  *http.Client
	logger  *slog.Logger
}

type WorldTimeConfig struct {
	APIBase string
	Logger  *slog.Logger
}

func NewWorldTime(cfg WorldTimeConfig) *WorldTime {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultTimeAPIBase
	}
	return &WorldTime{
		apiBase: cfg.APIBase,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  cfg.Logger,
	}
}

type timeResponse struct {
	Datetime string `json:"datetime"`
}

func (t *WorldTime) Now(ctx context.Context, location string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.apiBase+"/api/timezone/"+url.PathEscape(location), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("worldtimeapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("worldtimeapi %d: %s", resp.StatusCode, string(body))
	}

	var tr timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode time response: %w", err)
	}
	if tr.Datetime == "" {
		return "", fmt.Errorf("worldtimeapi: no datetime for %q", location)
	}
	return tr.Datetime, nil
}
