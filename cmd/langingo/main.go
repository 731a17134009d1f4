package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"langingo/internal/audio"
	"langingo/internal/channel"
	"langingo/internal/config"
	"langingo/internal/enrich"
	"langingo/internal/history"
	"langingo/internal/intent"
	"langingo/internal/metrics"
	"langingo/internal/provider"
	"langingo/internal/respond"
	"langingo/internal/storage"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "langingo",
		Short: "Langingo: webhook French tutor bot",
		Long:  "Langingo answers WhatsApp (Twilio) and Telegram messages in French with an English gloss, grounding replies in live news, weather, or time data.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.langingo/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("langingo v%s\n", version)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook responder",
		RunE:  runServe,
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.General.LogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openAI := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:    cfg.OpenAI.APIKey,
		APIBase:   cfg.OpenAI.APIBase,
		Model:     cfg.OpenAI.Model,
		MaxTokens: cfg.OpenAI.MaxTokens,
		TTSModel:  cfg.OpenAI.TTSModel,
		TTSVoice:  cfg.OpenAI.TTSVoice,
		Logger:    logger,
	})

	gateway := enrich.NewGateway(enrich.GatewayConfig{
		News:    enrich.NewNewsAPI(enrich.NewsAPIConfig{APIBase: cfg.News.APIBase, APIKey: cfg.News.APIKey, Logger: logger}),
		Weather: enrich.NewOpenWeather(enrich.OpenWeatherConfig{APIBase: cfg.Weather.APIBase, APIKey: cfg.Weather.APIKey, Units: cfg.Weather.Units, Logger: logger}),
		Time:    enrich.NewWorldTime(enrich.WorldTimeConfig{APIBase: cfg.Time.APIBase, Logger: logger}),
		Country: cfg.News.Country,
		Logger:  logger,
	})

	rules, err := intent.LoadRules(cfg.Intent.RulesPath, logger)
	if err != nil {
		return err
	}

	var recorder respond.Recorder
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.DBPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Prune(ctx, cfg.History.RetentionDays); err != nil {
			logger.Warn("history prune failed", "err", err)
		}
		recorder = store
	}

	var publisher respond.AudioPublisher
	if cfg.Audio.Enabled {
		publisher = audio.NewPublisher(audio.PublisherConfig{
			Synthesizer: openAI,
			Store: storage.NewGCS(storage.GCSConfig{
				Bucket: cfg.Storage.Bucket,
				Token:  cfg.Storage.Token,
				Logger: logger,
			}),
			Dir:    cfg.General.TempDir,
			Lang:   cfg.Audio.Lang,
			Logger: logger,
		})
	}

	responder := respond.New(respond.Config{
		Classifier:  intent.NewClassifier(rules, logger),
		Enricher:    gateway,
		Generator:   openAI,
		Audio:       publisher,
		Recorder:    recorder,
		DefaultCity: cfg.Intent.DefaultCity,
		Logger:      logger,
	})

	errCh := make(chan error, 2)
	running := 0

	if cfg.Channels.Twilio.Enabled {
		tw := channel.NewTwilio(channel.TwilioConfig{
			Port:        cfg.Channels.Twilio.Port,
			Path:        cfg.Channels.Twilio.Path,
			AuthToken:   cfg.Channels.Twilio.AuthToken,
			PublicURL:   cfg.Channels.Twilio.PublicURL,
			AttachAudio: cfg.Audio.AttachToReply,
			Metrics:     metricsEndpoint(cfg),
			MetricsPath: cfg.Metrics.Endpoint,
			Responder:   responder,
			Logger:      logger,
		})
		running++
		go func() { errCh <- tw.Start(ctx) }()
	}

	if cfg.Channels.Telegram.Enabled {
		tg := channel.NewTelegram(channel.TelegramConfig{
			Token:     cfg.Channels.Telegram.Token,
			AllowFrom: cfg.Channels.Telegram.AllowFrom,
			Responder: responder,
			Logger:    logger,
		})
		running++
		go func() { errCh <- tg.Start(ctx) }()
	}

	if running == 0 {
		return fmt.Errorf("no channels enabled; enable channels.twilio or channels.telegram")
	}

	logger.Info("langingo started", "version", version, "channels", running)

	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil {
			stop()
			return err
		}
	}
	return nil
}

func metricsEndpoint(cfg *config.Config) http.Handler {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.Collector.Handler()
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
