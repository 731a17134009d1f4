package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewsAPI_TopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/top-headlines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("country"); got != "fr" {
			t.Errorf("country = %q, want fr", got)
		}
		if got := r.URL.Query().Get("apiKey"); got != "key-123" {
			t.Errorf("apiKey = %q", got)
		}
		fmt.Fprint(w, `{"status":"ok","articles":[{"title":"T1","description":"D1"},{"title":"T2","description":"D2"}]}`)
	}))
	defer srv.Close()

	n := NewNewsAPI(NewsAPIConfig{APIBase: srv.URL, APIKey: "key-123", Logger: testLogger()})
	articles, err := n.TopHeadlines(context.Background(), "fr")
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 || articles[0].Title != "T1" || articles[1].Description != "D2" {
		t.Errorf("unexpected articles: %+v", articles)
	}
}

func TestNewsAPI_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","message":"apiKeyInvalid"}`)
	}))
	defer srv.Close()

	n := NewNewsAPI(NewsAPIConfig{APIBase: srv.URL, Logger: testLogger()})
	if _, err := n.TopHeadlines(context.Background(), "fr"); err == nil {
		t.Error("expected error for status=error payload")
	}
}

func TestOpenWeather_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Lyon?" {
			t.Errorf("q = %q, want Lyon?", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q", got)
		}
		fmt.Fprint(w, `{"weather":[{"description":"clear sky"}],"main":{"temp":21.3}}`)
	}))
	defer srv.Close()

	w := NewOpenWeather(OpenWeatherConfig{APIBase: srv.URL, APIKey: "k", Logger: testLogger()})
	report, err := w.Current(context.Background(), "Lyon?")
	if err != nil {
		t.Fatal(err)
	}
	if report.Description != "clear sky" || report.Temperature != 21.3 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestOpenWeather_MissingConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"weather":[],"main":{"temp":0}}`)
	}))
	defer srv.Close()

	w := NewOpenWeather(OpenWeatherConfig{APIBase: srv.URL, Logger: testLogger()})
	if _, err := w.Current(context.Background(), "Nowhere"); err == nil {
		t.Error("expected error for empty weather array")
	}
}

func TestOpenWeather_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	w := NewOpenWeather(OpenWeatherConfig{APIBase: srv.URL, Logger: testLogger()})
	if _, err := w.Current(context.Background(), "Nowhere"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestWorldTime_Now(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/timezone/Europe%2FParis" && r.URL.Path != "/api/timezone/Europe/Paris" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"datetime":"2026-08-31T10:00:00+02:00"}`)
	}))
	defer srv.Close()

	wt := NewWorldTime(WorldTimeConfig{APIBase: srv.URL, Logger: testLogger()})
	dt, err := wt.Now(context.Background(), "Europe/Paris")
	if err != nil {
		t.Fatal(err)
	}
	if dt != "2026-08-31T10:00:00+02:00" {
		t.Errorf("got %q", dt)
	}
}

func TestWorldTime_MissingDatetime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	wt := NewWorldTime(WorldTimeConfig{APIBase: srv.URL, Logger: testLogger()})
	if _, err := wt.Now(context.Background(), "Paris"); err == nil {
		t.Error("expected error for missing datetime field")
	}
}
