package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"langingo/internal/metrics"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-3.5-turbo"
	defaultMaxTokens = 500
	defaultTTSModel  = "tts-1"
	defaultTTSVoice  = "alloy"
)

// OpenAI is the generative-model and speech-synthesis adapter. It implements
// domain.Generator and domain.Synthesizer over the OpenAI API.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	ttsModel  string
	ttsVoice  string
	logger    *slog.Logger
}

type OpenAIConfig struct {
	APIKey    string
	APIBase   string // optional override for OpenAI-compatible endpoints
	Model     string
	MaxTokens int
	TTSModel  string
	TTSVoice  string
	Logger    *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = defaultTTSModel
	}
	if cfg.TTSVoice == "" {
		cfg.TTSVoice = defaultTTSVoice
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientCfg.BaseURL = cfg.APIBase
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		ttsModel:  cfg.TTSModel,
		ttsVoice:  cfg.TTSVoice,
		logger:    cfg.Logger,
	}
}

func (o *OpenAI) Name() string { return "openai" }

// Generate sends the prompt as a single system-role message and returns the
// model output verbatim.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	metrics.LLMRequestsTotal.Inc()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
	})
	metrics.LLMLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}

	o.logger.Debug("generation complete",
		"model", o.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

// Synthesize produces AAC audio for the given text. The lang hint is not
// forwarded: the OpenAI speech endpoint infers language from the input text.
func (o *OpenAI) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.ttsModel),
		Input:          text,
		Voice:          openai.SpeechVoice(o.ttsVoice),
		ResponseFormat: openai.SpeechResponseFormatAac,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech synthesis: empty audio")
	}
	return audio, nil
}

// Healthy verifies the API key by listing models.
func (o *OpenAI) Healthy(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai not reachable: %w", err)
	}
	return nil
}
