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

	"langingo/internal/domain"
)

const defaultWeatherAPIBase = "https://api.openweathermap.org/data/2.5"

// OpenWeather implements domain.WeatherSource against OpenWeatherMap.
type OpenWeather struct {
	apiBase string
	apiKey  string
	units   string
	client  *http.Client
	logger  *slog.Logger
}

type OpenWeatherConfig struct {
	APIBase string
	APIKey  string
	Units   string // "metric" | "imperial"
	Logger  *slog.Logger
}

func NewOpenWeather(cfg OpenWeatherConfig) *OpenWeather {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultWeatherAPIBase
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	return &OpenWeather{
		apiBase: cfg.APIBase,
		apiKey:  cfg.APIKey,
		units:   cfg.Units,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  cfg.Logger,
	}
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

func (w *OpenWeather) Current(ctx context.Context, city string) (domain.WeatherReport, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.apiKey)
	q.Set("units", w.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.apiBase+"/weather?"+q.Encode(), nil)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("openweathermap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherReport{}, fmt.Errorf("openweathermap %d: %s", resp.StatusCode, string(body))
	}

	var wr weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(wr.Weather) == 0 {
		return domain.WeatherReport{}, fmt.Errorf("openweathermap: no conditions for %q", city)
	}

	return domain.WeatherReport{
		Description: wr.Weather[0].Description,
		Temperature: wr.Main.Temp,
	}, nil
}
