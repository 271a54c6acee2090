// Package bot wires the Telegram update loop to the relay dispatcher: every
// text message is fanned out to the configured AI services and answered with
// the aggregated, labeled outcomes.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"multiai-bot/internal/domain"
	"multiai-bot/internal/relay"
)

const (
	// answerLimit clamps each service's reply so two verbose answers still
	// fit a single Telegram message.
	answerLimit = 800

	defaultMaxReplyLen = 4000
	updateTimeout      = 30 // long-poll seconds

	processingNotice = "Processing your message through all AI services...\nThis may take a few seconds."
)

// Dispatcher fans a prompt out to every configured AI service.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string) domain.AggregateResult
	ServiceNames() []string
}

// TelegramClient is the minimal tgbotapi surface the bot needs.
// *tgbotapi.BotAPI satisfies this interface.
type TelegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot handles Telegram commands and relays plain messages through the
// dispatcher.
type Bot struct {
	client      TelegramClient
	dispatch    Dispatcher
	maxReplyLen int
	start       time.Time
}

// New creates a Bot. maxReplyLen bounds the rendered reply; zero or less
// falls back to the Telegram-safe default.
func New(client TelegramClient, dispatch Dispatcher, maxReplyLen int) (*Bot, error) {
	if client == nil {
		return nil, errors.New("bot: telegram client must not be nil")
	}
	if dispatch == nil {
		return nil, errors.New("bot: dispatcher must not be nil")
	}
	if maxReplyLen <= 0 {
		maxReplyLen = defaultMaxReplyLen
	}
	return &Bot{
		client:      client,
		dispatch:    dispatch,
		maxReplyLen: maxReplyLen,
		start:       time.Now(),
	}, nil
}

// Run consumes updates until the context is canceled or the update channel
// closes.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.client.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, welcomeMessage())
	case "help":
		b.reply(msg.Chat.ID, helpMessage())
	case "status":
		b.reply(msg.Chat.ID, b.statusMessage())
	case "":
		b.handlePrompt(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handlePrompt(ctx context.Context, msg *tgbotapi.Message) {
	prompt := strings.TrimSpace(msg.Text)
	if prompt == "" {
		return
	}

	log := slog.With("correlation_id", uuid.NewString(), "chat_id", msg.Chat.ID)
	log.Info("relaying message", "prompt_len", len(prompt))

	notice, noticeErr := b.client.Send(tgbotapi.NewMessage(msg.Chat.ID, processingNotice))
	if noticeErr != nil {
		log.Warn("failed to send processing notice", "err", noticeErr)
	}

	result := b.dispatch.Dispatch(ctx, prompt)

	succeeded := 0
	for _, o := range result {
		if o.OK {
			succeeded++
		}
	}
	log.Info("dispatch settled", "services", len(result), "succeeded", succeeded)

	if noticeErr == nil {
		if _, err := b.client.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, notice.MessageID)); err != nil {
			log.Warn("failed to delete processing notice", "err", err)
		}
	}
	b.reply(msg.Chat.ID, b.formatReply(result))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.client.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("failed to send reply", "chat_id", chatID, "err", err)
	}
}

// formatReply clamps each service's answer, renders the labeled blocks and
// clamps the whole reply to the Telegram message limit.
func (b *Bot) formatReply(result domain.AggregateResult) string {
	clamped := make(domain.AggregateResult, len(result))
	for i, o := range result {
		if o.OK {
			o.Text = clamp(o.Text, answerLimit)
		}
		clamped[i] = o
	}
	return clamp(relay.Render(clamped), b.maxReplyLen)
}

func clamp(s string, limit int) string {
	const marker = "... (truncated)"
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	cut := limit - len(marker)
	if cut < 0 {
		cut = 0
	}
	return string(r[:cut]) + marker
}

func (b *Bot) statusMessage() string {
	lines := []string{
		"Bot status",
		"",
		"Uptime: " + time.Since(b.start).Round(time.Second).String(),
		"Configured services:",
	}
	for _, name := range b.dispatch.ServiceNames() {
		lines = append(lines, "- "+name)
	}
	return strings.Join(lines, "\n")
}

func welcomeMessage() string {
	return strings.Join([]string{
		"Welcome to the Multi-AI Assistant Bot!",
		"",
		"Send me any message and I'll relay it to every configured AI service",
		"at once, then reply with each service's answer.",
		"",
		"Commands:",
		"/start - Show this welcome message",
		"/help - Show help information",
		"/status - Check bot status",
	}, "\n")
}

func helpMessage() string {
	return strings.Join([]string{
		"How to use:",
		"1. Send any text message",
		"2. The bot queries all configured AI services simultaneously",
		"3. You receive one labeled answer per service, even if some fail",
		"",
		"Each service has its own timeout, so one slow backend never blocks",
		"the others.",
	}, "\n")
}
