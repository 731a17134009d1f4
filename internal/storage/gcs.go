// Package storage hosts reply artifacts on Google Cloud Storage through the
// JSON upload API.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultUploadBase = "https://storage.googleapis.com"
	defaultPublicBase = "https://storage.cloud.google.com"
)

// GCS implements domain.ObjectStore with a media upload per object. Objects
// are addressed as {publicBase}/{bucket}/{name}.
type GCS struct {
	bucket     string
	token      string
	uploadBase string
	publicBase string
	client     *http.Client
	logger     *slog.Logger
}

type GCSConfig struct {
	Bucket     string
	Token      string // OAuth2 bearer token (service-account derived)
	UploadBase string
	PublicBase string
	Logger     *slog.Logger
}

func NewGCS(cfg GCSConfig) *GCS {
	if cfg.UploadBase == "" {
		cfg.UploadBase = defaultUploadBase
	}
	if cfg.PublicBase == "" {
		cfg.PublicBase = defaultPublicBase
	}
	return &GCS{
		bucket:     cfg.Bucket,
		token:      cfg.Token,
		uploadBase: cfg.UploadBase,
		publicBase: cfg.PublicBase,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     cfg.Logger,
	}
}

// Upload pushes body under key and returns the public object URL.
func (g *GCS) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	uploadURL := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		g.uploadBase, url.PathEscape(g.bucket), url.QueryEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gcs upload %d: %s", resp.StatusCode, string(respBody))
	}

	objectURL := fmt.Sprintf("%s/%s/%s", g.publicBase, g.bucket, key)
	g.logger.Debug("object uploaded", "bucket", g.bucket, "key", key)
	return objectURL, nil
}
