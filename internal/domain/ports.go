package domain

import (
	"context"
	"io"
)

// Generator produces free-form text from a single instruction prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Healthy(ctx context.Context) error
}

// Synthesizer converts text into speech audio bytes. lang is a BCP-47-ish
// hint ("fr"); implementations may ignore it when the voice implies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// ObjectStore uploads a blob under a key and returns a publicly resolvable URL.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Article is one headline record from the news provider.
type Article struct {
	Title       string
	Description string
}

// WeatherReport is the current-conditions record from the weather provider.
type WeatherReport struct {
	Description string
	Temperature float64 // °C
}

// NewsSource returns top headlines for a country code ("fr", "us", ...).
type NewsSource interface {
	TopHeadlines(ctx context.Context, country string) ([]Article, error)
}

// WeatherSource returns current conditions for a city name.
type WeatherSource interface {
	Current(ctx context.Context, city string) (WeatherReport, error)
}

// TimeSource returns the current datetime string for a timezone or city
// identifier, as reported by the provider.
type TimeSource interface {
	Now(ctx context.Context, location string) (string, error)
}
