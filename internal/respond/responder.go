package respond

import (
	"context"
	"fmt"
	"log/slog"

	"langingo/internal/domain"
	"langingo/internal/intent"
	"langingo/internal/metrics"
)

// Enricher fetches the supporting data for a classified intent.
type Enricher interface {
	Enrich(ctx context.Context, in domain.Intent, city string) (string, error)
}

// AudioPublisher synthesizes speech for a reply and hosts it, returning a
// public URL.
type AudioPublisher interface {
	Publish(ctx context.Context, text string) (string, error)
}

// Recorder persists one completed exchange. Recording is best effort and
// never feeds back into prompts.
type Recorder interface {
	Record(ctx context.Context, ex domain.Exchange) error
}

// Responder runs the full pipeline for one inbound message:
// classify → enrich (best effort) → compose → generate → publish audio
// (best effort). Only a generation failure aborts the request; everything
// else degrades to a reduced-information reply. The pipeline holds no
// per-request state, so concurrent calls need no coordination.
type Responder struct {
	classifier  *intent.Classifier
	enricher    Enricher
	generator   domain.Generator
	audio       AudioPublisher // nil disables the audio path
	recorder    Recorder       // nil disables exchange logging
	defaultCity string
	logger      *slog.Logger
}

type Config struct {
	Classifier  *intent.Classifier
	Enricher    Enricher
	Generator   domain.Generator
	Audio       AudioPublisher
	Recorder    Recorder
	DefaultCity string
	Logger      *slog.Logger
}

func New(cfg Config) *Responder {
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "Paris"
	}
	return &Responder{
		classifier:  cfg.Classifier,
		enricher:    cfg.Enricher,
		generator:   cfg.Generator,
		audio:       cfg.Audio,
		recorder:    cfg.Recorder,
		defaultCity: cfg.DefaultCity,
		logger:      cfg.Logger,
	}
}

// Respond processes one message and returns the reply for the channel to
// wrap in its envelope.
func (r *Responder) Respond(ctx context.Context, msg domain.InboundMessage) (domain.Reply, error) {
	metrics.MessagesTotal.Inc()

	in := r.classifier.Classify(msg.Body)

	// At most one enrichment fetch per message, never retried. A failed
	// fetch only drops the summary from the prompt.
	var summary string
	if in != domain.IntentNone {
		city := intent.ExtractCity(msg.Body, r.defaultCity)
		s, err := r.enricher.Enrich(ctx, in, city)
		if err != nil {
			metrics.EnrichmentFailures.Inc()
			r.logger.Warn("enrichment failed, continuing without summary",
				"intent", in, "city", city, "err", err)
		} else {
			summary = s
		}
	}

	prompt := ComposePrompt(msg.Body, summary)

	text, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.GenerationFailures.Inc()
		return domain.Reply{}, fmt.Errorf("generate reply: %w", err)
	}

	reply := domain.Reply{Text: text}

	if r.audio != nil {
		url, err := r.audio.Publish(ctx, text)
		if err != nil {
			metrics.AudioFailures.Inc()
			r.logger.Warn("audio publish failed, replying without audio", "err", err)
		} else {
			metrics.AudioPublished.Inc()
			reply.AudioURL = url
			reply.AudioContentType = "audio/mp4"
		}
	}

	if r.recorder != nil {
		ex := domain.Exchange{
			Channel:  msg.Channel,
			From:     msg.From,
			Question: msg.Body,
			Intent:   in,
			Summary:  summary,
			Reply:    reply.Text,
			AudioURL: reply.AudioURL,
		}
		if err := r.recorder.Record(ctx, ex); err != nil {
			r.logger.Warn("cannot record exchange", "err", err)
		}
	}

	metrics.RepliesTotal.Inc()
	r.logger.Info("reply generated",
		"channel", msg.Channel,
		"intent", in,
		"enriched", summary != "",
		"audio", reply.AudioURL != "",
		"reply_len", len(reply.Text),
	)
	return reply, nil
}
