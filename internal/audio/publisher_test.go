package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type fakeSynth struct {
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	return f.audio, f.err
}

type fakeStore struct {
	url         string
	err         error
	key         string
	contentType string
	received    []byte
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	f.key = key
	f.contentType = contentType
	f.received, _ = io.ReadAll(body)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func tempEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestPublish_Success(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{url: "https://storage.cloud.google.com/langingo/a.mp4"}
	p := NewPublisher(PublisherConfig{
		Synthesizer: &fakeSynth{audio: []byte("aac-bytes")},
		Store:       store,
		Dir:         dir,
		Logger:      testLogger(),
	})

	url, err := p.Publish(context.Background(), "Bonjour tout le monde")
	if err != nil {
		t.Fatal(err)
	}
	if url != store.url {
		t.Errorf("url = %q", url)
	}
	if string(store.received) != "aac-bytes" {
		t.Errorf("uploaded bytes = %q", store.received)
	}
	if store.contentType != "audio/mp4" {
		t.Errorf("content type = %q", store.contentType)
	}
	if !strings.HasPrefix(store.key, "response_") || !strings.HasSuffix(store.key, ".mp4") {
		t.Errorf("artifact name = %q", store.key)
	}
	if n := tempEntries(t, dir); n != 0 {
		t.Errorf("local artifact leaked: %d files left in staging dir", n)
	}
}

func TestPublish_UploadFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(PublisherConfig{
		Synthesizer: &fakeSynth{audio: []byte("x")},
		Store:       &fakeStore{err: errors.New("bucket unreachable")},
		Dir:         dir,
		Logger:      testLogger(),
	})

	if _, err := p.Publish(context.Background(), "text"); err == nil {
		t.Fatal("expected upload error")
	}
	if n := tempEntries(t, dir); n != 0 {
		t.Errorf("failed upload leaked %d local artifacts", n)
	}
}

func TestPublish_SynthesisFailure(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(PublisherConfig{
		Synthesizer: &fakeSynth{err: errors.New("tts down")},
		Store:       &fakeStore{},
		Dir:         dir,
		Logger:      testLogger(),
	})

	if _, err := p.Publish(context.Background(), "text"); err == nil {
		t.Fatal("expected synthesis error")
	}
	if n := tempEntries(t, dir); n != 0 {
		t.Errorf("synthesis failure left %d files behind", n)
	}
}

func TestPublish_UniqueNames(t *testing.T) {
	store := &fakeStore{url: "u"}
	p := NewPublisher(PublisherConfig{
		Synthesizer: &fakeSynth{audio: []byte("x")},
		Store:       store,
		Dir:         t.TempDir(),
		Logger:      testLogger(),
	})

	if _, err := p.Publish(context.Background(), "one"); err != nil {
		t.Fatal(err)
	}
	first := store.key
	if _, err := p.Publish(context.Background(), "two"); err != nil {
		t.Fatal(err)
	}
	if store.key == first {
		t.Errorf("artifact names must be unique, got %q twice", first)
	}
}
