package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for Langingo. All provider credentials
// are supplied here at startup; no component reads ambient globals.
type Config struct {
	General  GeneralConfig  `json:"general"`
	OpenAI   OpenAIConfig   `json:"openai"`
	News     NewsConfig     `json:"news"`
	Weather  WeatherConfig  `json:"weather"`
	Time     TimeConfig     `json:"time"`
	Intent   IntentConfig   `json:"intent"`
	Channels ChannelsConfig `json:"channels"`
	Audio    AudioConfig    `json:"audio"`
	Storage  StorageConfig  `json:"storage"`
	History  HistoryConfig  `json:"history"`
	Metrics  MetricsConfig  `json:"metrics"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"` // debug | info | warn | error
	TempDir  string `json:"tempDir,omitempty"`
}

type OpenAIConfig struct {
	APIKey    string `json:"apiKey"`
	APIBase   string `json:"apiBase,omitempty"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
	TTSModel  string `json:"ttsModel,omitempty"`
	TTSVoice  string `json:"ttsVoice,omitempty"`
}

type NewsConfig struct {
	APIKey  string `json:"apiKey"`
	APIBase string `json:"apiBase,omitempty"`
	Country string `json:"country"` // top-headlines country code
}

type WeatherConfig struct {
	APIKey  string `json:"apiKey"`
	APIBase string `json:"apiBase,omitempty"`
	Units   string `json:"units"` // metric | imperial
}

type TimeConfig struct {
	APIBase string `json:"apiBase,omitempty"`
}

type IntentConfig struct {
	RulesPath   string `json:"rulesPath,omitempty"` // optional YAML rule table
	DefaultCity string `json:"defaultCity"`
}

type ChannelsConfig struct {
	Twilio   TwilioConfig   `json:"twilio"`
	Telegram TelegramConfig `json:"telegram"`
}

type TwilioConfig struct {
	Enabled   bool   `json:"enabled"`
	Port      int    `json:"port"`
	Path      string `json:"path"`
	AuthToken string `json:"authToken,omitempty"` // empty disables signature validation
	PublicURL string `json:"publicUrl,omitempty"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token,omitempty"`
	AllowFrom []string `json:"allowFrom,omitempty"`
}

type AudioConfig struct {
	Enabled       bool   `json:"enabled"`       // synthesize and host speech for replies
	AttachToReply bool   `json:"attachToReply"` // include <Media> in the TwiML envelope
	Lang          string `json:"lang"`
}

type StorageConfig struct {
	Bucket string `json:"bucket"`
	Token  string `json:"token,omitempty"`
}

type HistoryConfig struct {
	Enabled       bool   `json:"enabled"`
	DBPath        string `json:"dbPath"`
	RetentionDays int    `json:"retentionDays"`
}

type MetricsConfig struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
}

// DefaultConfigDir returns the default config directory (~/.langingo).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".langingo"
	}
	return filepath.Join(home, ".langingo")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads, env-expands, and validates a config file.
func Load(path string) (*Config, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.History.DBPath = expandPath(cfg.History.DBPath)
	cfg.Intent.RulesPath = expandPath(cfg.Intent.RulesPath)
	applyEnvFallbacks(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		name := groups[1]
		def := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			def = groups[2]
		}

		val, exists := os.LookupEnv(name)
		if !exists || val == "" {
			if hasDefault {
				return def
			}
			return match
		}
		return val
	})
}

// applyEnvFallbacks fills credentials the file leaves empty from well-known
// environment variables, so a config file never has to carry secrets.
func applyEnvFallbacks(cfg *Config) {
	fallbacks := []struct {
		dst *string
		env string
	}{
		{&cfg.OpenAI.APIKey, "OPENAI_API_KEY"},
		{&cfg.News.APIKey, "NEWSAPI_KEY"},
		{&cfg.Weather.APIKey, "WEATHERAPI_KEY"},
		{&cfg.Channels.Twilio.AuthToken, "TWILIO_AUTH_TOKEN"},
		{&cfg.Channels.Telegram.Token, "TELEGRAM_BOT_TOKEN"},
		{&cfg.Storage.Token, "GCS_ACCESS_TOKEN"},
	}
	for _, f := range fallbacks {
		if *f.dst == "" {
			*f.dst = os.Getenv(f.env)
		}
	}
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the config for values that would fail at runtime.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}
	if cfg.OpenAI.MaxTokens < 1 {
		errs = append(errs, "openai.maxTokens must be >= 1")
	}
	switch cfg.Weather.Units {
	case "", "metric", "imperial":
	default:
		errs = append(errs, "weather.units must be metric or imperial")
	}
	if cfg.Channels.Twilio.Port < 0 || cfg.Channels.Twilio.Port > 65535 {
		errs = append(errs, "channels.twilio.port must be between 0 and 65535")
	}
	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token == "" {
		errs = append(errs, "channels.telegram.token is required when telegram is enabled")
	}
	if cfg.Audio.Enabled && cfg.Storage.Bucket == "" {
		errs = append(errs, "storage.bucket is required when audio is enabled")
	}
	if cfg.Audio.AttachToReply && !cfg.Audio.Enabled {
		errs = append(errs, "audio.attachToReply requires audio.enabled")
	}
	if cfg.History.Enabled && cfg.History.DBPath == "" {
		errs = append(errs, "history.dbPath is required when history is enabled")
	}
	if cfg.History.Enabled && cfg.History.RetentionDays < 1 {
		errs = append(errs, "history.retentionDays must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
