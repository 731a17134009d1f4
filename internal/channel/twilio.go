package channel

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"langingo/internal/domain"
)

// Responder is the pipeline entry point a channel hands messages to.
type Responder interface {
	Respond(ctx context.Context, msg domain.InboundMessage) (domain.Reply, error)
}

// TwilioConfig configures the Twilio WhatsApp webhook channel.
type TwilioConfig struct {
	Port        int
	Path        string // webhook URL path (default: /whatsapp)
	AuthToken   string // Twilio auth token for signature validation; empty disables it
	PublicURL   string // externally visible base URL, used to reconstruct the signed URL behind proxies
	AttachAudio bool   // include a <Media> element when a reply carries audio
	Metrics     http.Handler // optional metrics handler
	MetricsPath string       // where to mount it (default: /metrics)
	Responder   Responder
	Logger      *slog.Logger
}

// Twilio serves the inbound webhook: form-encoded POST with a Body field in,
// TwiML envelope out. Requests are independent; the server may run them
// concurrently without coordination.
type Twilio struct {
	port        int
	path        string
	authToken   string
	publicURL   string
	attachAudio bool
	metrics     http.Handler
	metricsPath string
	responder   Responder
	logger      *slog.Logger
	server      *http.Server
}

func NewTwilio(cfg TwilioConfig) *Twilio {
	if cfg.Path == "" {
		cfg.Path = "/whatsapp"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Twilio{
		port:        cfg.Port,
		path:        cfg.Path,
		authToken:   cfg.AuthToken,
		publicURL:   cfg.PublicURL,
		attachAudio: cfg.AttachAudio,
		metrics:     cfg.Metrics,
		metricsPath: cfg.MetricsPath,
		responder:   cfg.Responder,
		logger:      cfg.Logger,
	}
}

func (t *Twilio) Name() string { return "twilio" }

// Start runs the webhook HTTP server until ctx is cancelled.
func (t *Twilio) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(t.path, t.handleMessage)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		fmt.Fprint(rw, "ok")
	})
	if t.metrics != nil {
		mux.Handle(t.metricsPath, t.metrics)
	}

	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	t.logger.Info("twilio webhook starting", "port", t.port, "path", t.path)

	errCh := make(chan error, 1)
	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("twilio webhook shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("twilio webhook: %w", err)
	}
}

func (t *Twilio) handleMessage(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}

	if t.authToken != "" {
		sig := r.Header.Get("X-Twilio-Signature")
		if sig == "" {
			http.Error(rw, "Missing signature", http.StatusUnauthorized)
			return
		}
		if !validateTwilioSignature(t.authToken, t.signedURL(r), r.PostForm, sig) {
			t.logger.Warn("twilio invalid signature", "remote", r.RemoteAddr)
			http.Error(rw, "Invalid signature", http.StatusForbidden)
			return
		}
	}

	// An empty Body is still a valid message: it classifies as no intent and
	// gets a generic reply.
	body := r.PostFormValue("Body")
	from := r.PostFormValue("From")

	t.logger.Info("twilio message received", "from", from, "body_len", len(body))

	reply, err := t.responder.Respond(r.Context(), domain.InboundMessage{
		Channel:    "twilio",
		From:       from,
		Body:       body,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		t.logger.Error("cannot generate reply", "err", err)
		http.Error(rw, "Bad Gateway", http.StatusBadGateway)
		return
	}

	out, err := renderTwiML(reply, t.attachAudio)
	if err != nil {
		t.logger.Error("cannot render reply envelope", "err", err)
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "application/xml")
	rw.WriteHeader(http.StatusOK)
	rw.Write(out)
}

// signedURL reconstructs the URL Twilio signed. Behind a proxy the request's
// host/scheme are not what Twilio saw, so an explicit public URL wins.
func (t *Twilio) signedURL(r *http.Request) string {
	if t.publicURL != "" {
		return t.publicURL + t.path
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// validateTwilioSignature checks the X-Twilio-Signature header: HMAC-SHA1 of
// the full URL concatenated with every POST parameter as key+value in
// lexicographic key order, base64 encoded.
func validateTwilioSignature(authToken, fullURL string, form url.Values, signature string) bool {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(fullURL))
	for _, k := range keys {
		for _, v := range form[k] {
			mac.Write([]byte(k))
			mac.Write([]byte(v))
		}
	}
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
