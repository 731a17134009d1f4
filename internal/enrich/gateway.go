package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"langingo/internal/domain"
)

// maxHeadlines bounds how many articles make it into the summary.
const maxHeadlines = 5

// Gateway fetches the supporting data for a classified intent and renders it
// as a plain-text summary. One fetch per request, no retries, no caching;
// failures surface to the caller, which degrades to an unenriched prompt.
type Gateway struct {
	news    domain.NewsSource
	weather domain.WeatherSource
	time    domain.TimeSource
	country string
	logger  *slog.Logger
}

type GatewayConfig struct {
	News    domain.NewsSource
	Weather domain.WeatherSource
	Time    domain.TimeSource
	Country string // news country code (default "fr")
	Logger  *slog.Logger
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Country == "" {
		cfg.Country = "fr"
	}
	return &Gateway{
		news:    cfg.News,
		weather: cfg.Weather,
		time:    cfg.Time,
		country: cfg.Country,
		logger:  cfg.Logger,
	}
}

// Enrich consults the provider matching intent and returns a summary line.
// Callers must not pass IntentNone.
func (g *Gateway) Enrich(ctx context.Context, intent domain.Intent, city string) (string, error) {
	switch intent {
	case domain.IntentNews:
		return g.newsSummary(ctx)
	case domain.IntentWeather:
		return g.weatherSummary(ctx, city)
	case domain.IntentTime:
		return g.timeSummary(ctx, city)
	default:
		return "", fmt.Errorf("no enrichment source for intent %q", intent)
	}
}

func (g *Gateway) newsSummary(ctx context.Context) (string, error) {
	articles, err := g.news.TopHeadlines(ctx, g.country)
	if err != nil {
		return "", err
	}
	if len(articles) > maxHeadlines {
		articles = articles[:maxHeadlines]
	}

	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Title, a.Description))
	}
	return "Latest news: " + strings.Join(lines, " "), nil
}

func (g *Gateway) weatherSummary(ctx context.Context, city string) (string, error) {
	report, err := g.weather.Current(ctx, city)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The current weather in %s is %s with a temperature of %g°C.",
		city, report.Description, report.Temperature), nil
}

func (g *Gateway) timeSummary(ctx context.Context, city string) (string, error) {
	datetime, err := g.time.Now(ctx, city)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The current time in %s is %s.", city, datetime), nil
}
