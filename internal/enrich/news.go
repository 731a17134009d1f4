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

const defaultNewsAPIBase = "https://newsapi.org/v2"

// NewsAPI implements domain.NewsSource against newsapi.org.
type NewsAPI struct {
	apiBase string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

type NewsAPIConfig struct {
	APIBase string
	APIKey  string
	Logger  *slog.Logger
}

func NewNewsAPI(cfg NewsAPIConfig) *NewsAPI {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultNewsAPIBase
	}
	return &NewsAPI{
		apiBase: cfg.APIBase,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  cfg.Logger,
	}
}

type newsResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (n *NewsAPI) TopHeadlines(ctx context.Context, country string) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		n.apiBase+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("newsapi %d: %s", resp.StatusCode, string(body))
	}

	var nr newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if nr.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s", nr.Status, nr.Message)
	}

	articles := make([]domain.Article, 0, len(nr.Articles))
	for _, a := range nr.Articles {
		articles = append(articles, domain.Article{Title: a.Title, Description: a.Description})
	}
	return articles, nil
}
