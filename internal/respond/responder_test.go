package respond

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"langingo/internal/domain"
	"langingo/internal/enrich"
	"langingo/internal/intent"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type fakeEnricher struct {
	summary string
	err     error
	calls   int
	intent  domain.Intent
	city    string
}

func (f *fakeEnricher) Enrich(ctx context.Context, in domain.Intent, city string) (string, error) {
	f.calls++
	f.intent = in
	f.city = city
	return f.summary, f.err
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string                      { return "fake" }
func (f *fakeGenerator) Healthy(ctx context.Context) error { return nil }

type fakeAudio struct {
	url   string
	err   error
	calls int
}

func (f *fakeAudio) Publish(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.url, f.err
}

func newResponder(e Enricher, g domain.Generator, a AudioPublisher) *Responder {
	return New(Config{
		Classifier: intent.NewClassifier(nil, testLogger()),
		Enricher:   e,
		Generator:  g,
		Audio:      a,
		Logger:     testLogger(),
	})
}

func msg(body string) domain.InboundMessage {
	return domain.InboundMessage{Channel: "test", From: "user", Body: body}
}

func TestRespond_NoIntentSkipsEnrichment(t *testing.T) {
	e := &fakeEnricher{}
	g := &fakeGenerator{reply: "Bonjour!"}
	r := newResponder(e, g, nil)

	reply, err := r.Respond(context.Background(), msg("how do I say hello?"))
	if err != nil {
		t.Fatal(err)
	}
	if e.calls != 0 {
		t.Errorf("enricher called %d times for IntentNone, want 0", e.calls)
	}
	if strings.Contains(g.prompt, "information you requested") {
		t.Error("unenriched prompt must not contain the information clause")
	}
	if reply.Text != "Bonjour!" {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestRespond_EnrichmentFailureDegrades(t *testing.T) {
	e := &fakeEnricher{err: errors.New("provider down")}
	g := &fakeGenerator{reply: "Il pleut."}
	r := newResponder(e, g, nil)

	reply, err := r.Respond(context.Background(), msg("what's the weather in Lyon?"))
	if err != nil {
		t.Fatalf("enrichment failure must not abort the pipeline: %v", err)
	}
	if e.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", e.calls)
	}
	if strings.Contains(g.prompt, "information you requested") {
		t.Error("failed enrichment must fall back to the summary-absent template")
	}
	if reply.Text == "" {
		t.Error("expected a reply despite enrichment failure")
	}
}

func TestRespond_GenerationFailureIsFatal(t *testing.T) {
	g := &fakeGenerator{err: errors.New("rate limited")}
	r := newResponder(&fakeEnricher{}, g, nil)

	if _, err := r.Respond(context.Background(), msg("bonjour")); err == nil {
		t.Error("generation failure must surface as a request failure")
	}
}

func TestRespond_AudioFailureDegrades(t *testing.T) {
	g := &fakeGenerator{reply: "Salut."}
	a := &fakeAudio{err: errors.New("upload failed")}
	r := newResponder(&fakeEnricher{}, g, a)

	reply, err := r.Respond(context.Background(), msg("hello"))
	if err != nil {
		t.Fatalf("audio failure must not abort the request: %v", err)
	}
	if a.calls != 1 {
		t.Errorf("audio publisher calls = %d, want 1", a.calls)
	}
	if reply.AudioURL != "" {
		t.Errorf("failed publish must not attach a URL, got %q", reply.AudioURL)
	}
	if reply.Text != "Salut." {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestRespond_AudioAttached(t *testing.T) {
	g := &fakeGenerator{reply: "Salut."}
	a := &fakeAudio{url: "https://storage.cloud.google.com/langingo/x.mp4"}
	r := newResponder(&fakeEnricher{}, g, a)

	reply, err := r.Respond(context.Background(), msg("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if reply.AudioURL != a.url {
		t.Errorf("AudioURL = %q, want %q", reply.AudioURL, a.url)
	}
	if reply.AudioContentType != "audio/mp4" {
		t.Errorf("AudioContentType = %q", reply.AudioContentType)
	}
}

// End-to-end through the real gateway with fake sources: weather question
// about Berlin produces a Berlin-formatted summary inside the prompt.
func TestRespond_WeatherEndToEnd(t *testing.T) {
	gateway := enrich.NewGateway(enrich.GatewayConfig{
		Weather: weatherStub{domain.WeatherReport{Description: "overcast clouds", Temperature: 18}},
		Logger:  testLogger(),
	})
	g := &fakeGenerator{reply: "French: Il fait nuageux.\n\nEnglish: It is cloudy."}
	r := New(Config{
		Classifier: intent.NewClassifier(nil, testLogger()),
		Enricher:   gateway,
		Generator:  g,
		Logger:     testLogger(),
	})

	reply, err := r.Respond(context.Background(), msg("What's the weather in Berlin?"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(g.prompt, "What's the weather in Berlin?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(g.prompt, "The current weather in Berlin? is overcast clouds with a temperature of 18°C.") {
		t.Errorf("prompt missing the weather summary:\n%s", g.prompt)
	}
	if reply.Text == "" {
		t.Error("expected non-empty reply text")
	}
}

type weatherStub struct{ report domain.WeatherReport }

func (w weatherStub) Current(ctx context.Context, city string) (domain.WeatherReport, error) {
	return w.report, nil
}
