package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		OpenAI: OpenAIConfig{
			Model:     "gpt-3.5-turbo",
			MaxTokens: 500,
			TTSModel:  "tts-1",
			TTSVoice:  "alloy",
		},
		News: NewsConfig{
			Country: "fr",
		},
		Weather: WeatherConfig{
			Units: "metric",
		},
		Time: TimeConfig{},
		Intent: IntentConfig{
			DefaultCity: "Paris",
		},
		Channels: ChannelsConfig{
			Twilio: TwilioConfig{
				Enabled: true,
				Port:    8000,
				Path:    "/whatsapp",
			},
			Telegram: TelegramConfig{
				Enabled: false,
			},
		},
		Audio: AudioConfig{
			Enabled:       false,
			AttachToReply: false,
			Lang:          "fr",
		},
		Storage: StorageConfig{
			Bucket: "langingo",
		},
		History: HistoryConfig{
			Enabled:       false,
			DBPath:        "~/.langingo/history.db",
			RetentionDays: 90,
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "/metrics",
		},
	}
}
