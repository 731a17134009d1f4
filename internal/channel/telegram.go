package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"langingo/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram is a secondary channel running the same responder over Telegram
// long polling. Replies are plain text; when a reply carries hosted audio,
// the audio is sent as a follow-up by URL.
type Telegram struct {
	token     string
	allowFrom []int64 // allowed user IDs (empty = allow all)
	responder Responder
	logger    *slog.Logger
	bot       *tgbotapi.BotAPI
}

type TelegramConfig struct {
	Token     string
	AllowFrom []string // user IDs as strings
	Responder Responder
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	var allowed []int64
	for _, s := range cfg.AllowFrom {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			allowed = append(allowed, id)
		}
	}
	return &Telegram{
		token:     cfg.Token,
		allowFrom: allowed,
		responder: cfg.Responder,
		logger:    cfg.Logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and polls for updates until ctx is cancelled.
func (t *Telegram) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			t.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if !t.allowed(update.Message.From.ID) {
				t.logger.Warn("telegram message from disallowed user", "user", update.Message.From.ID)
				continue
			}
			go t.handleMessage(ctx, update.Message)
		}
	}
}

func (t *Telegram) allowed(userID int64) bool {
	if len(t.allowFrom) == 0 {
		return true
	}
	for _, id := range t.allowFrom {
		if id == userID {
			return true
		}
	}
	return false
}

func (t *Telegram) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	reply, err := t.responder.Respond(ctx, domain.InboundMessage{
		Channel:    "telegram",
		From:       strconv.FormatInt(msg.From.ID, 10),
		Body:       msg.Text,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		t.logger.Error("cannot generate reply", "chat", msg.Chat.ID, "err", err)
		out := tgbotapi.NewMessage(msg.Chat.ID, "Désolé, je ne peux pas répondre pour le moment.")
		if _, err := t.bot.Send(out); err != nil {
			t.logger.Error("telegram send failed", "err", err)
		}
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if _, err := t.bot.Send(out); err != nil {
		t.logger.Error("telegram send failed", "chat", msg.Chat.ID, "err", err)
		return
	}

	if reply.AudioURL != "" {
		audio := tgbotapi.NewAudio(msg.Chat.ID, tgbotapi.FileURL(reply.AudioURL))
		if _, err := t.bot.Send(audio); err != nil {
			t.logger.Warn("telegram audio send failed", "chat", msg.Chat.ID, "err", err)
		}
	}
}
