// Package audio turns a generated reply into a hosted speech artifact:
// synthesize, stage to a local temp file, upload, clean up, return the URL.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"langingo/internal/domain"

	"github.com/google/uuid"
)

const artifactContentType = "audio/mp4"

// Publisher implements the synthesize → upload → cleanup state machine. The
// local artifact is removed on every exit path once it exists, so a failed
// upload never leaks temp storage. Artifact names combine a random token
// with a timestamp, which keeps concurrent requests collision-free without
// locking.
type Publisher struct {
	synth  domain.Synthesizer
	store  domain.ObjectStore
	dir    string
	lang   string
	logger *slog.Logger
	now    func() time.Time
}

type PublisherConfig struct {
	Synthesizer domain.Synthesizer
	Store       domain.ObjectStore
	Dir         string // staging directory for local artifacts (default: os.TempDir())
	Lang        string // language hint for synthesis (default "fr")
	Logger      *slog.Logger
}

func NewPublisher(cfg PublisherConfig) *Publisher {
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	if cfg.Lang == "" {
		cfg.Lang = "fr"
	}
	return &Publisher{
		synth:  cfg.Synthesizer,
		store:  cfg.Store,
		dir:    cfg.Dir,
		lang:   cfg.Lang,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// Publish synthesizes speech for text and uploads it, returning the public URL.
func (p *Publisher) Publish(ctx context.Context, text string) (string, error) {
	audio, err := p.synth.Synthesize(ctx, text, p.lang)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	name := fmt.Sprintf("response_%s_%s.mp4", uuid.NewString(), p.now().Format("20060102150405"))
	path := filepath.Join(p.dir, name)

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			p.logger.Warn("cannot remove local artifact", "path", path, "err", err)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	url, err := p.store.Upload(ctx, name, artifactContentType, f)
	if err != nil {
		return "", fmt.Errorf("upload artifact %s: %w", name, err)
	}

	p.logger.Debug("audio artifact published", "name", name, "url", url, "bytes", len(audio))
	return url, nil
}
