package storage

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestUpload_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/langingo/o") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("uploadType"); got != "media" {
			t.Errorf("uploadType = %q", got)
		}
		if got := r.URL.Query().Get("name"); got != "response_x.mp4" {
			t.Errorf("name = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "audio/mp4" {
			t.Errorf("content type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "bytes" {
			t.Errorf("body = %q", body)
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"name":"response_x.mp4"}`)
	}))
	defer srv.Close()

	g := NewGCS(GCSConfig{
		Bucket:     "langingo",
		Token:      "tok",
		UploadBase: srv.URL,
		Logger:     testLogger(),
	})

	url, err := g.Upload(context.Background(), "response_x.mp4", "audio/mp4", strings.NewReader("bytes"))
	if err != nil {
		t.Fatal(err)
	}
	want := "https://storage.cloud.google.com/langingo/response_x.mp4"
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestUpload_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGCS(GCSConfig{Bucket: "b", UploadBase: srv.URL, Logger: testLogger()})
	if _, err := g.Upload(context.Background(), "k", "audio/mp4", strings.NewReader("x")); err == nil {
		t.Error("expected error for 401")
	}
}
