package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"multiai-bot/internal/bot"
	"multiai-bot/internal/config"
	"multiai-bot/internal/integrations/gemini"
	"multiai-bot/internal/integrations/together"
	"multiai-bot/internal/relay"
	"multiai-bot/internal/web"
)

func main() {
	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	// ---- AI service clients ----
	services, err := buildServices(cfg)
	if err != nil {
		slog.Error("failed to create AI service clients", "err", err)
		os.Exit(1)
	}

	dispatcher, err := relay.NewDispatcher(services, cfg.RequestTimeout)
	if err != nil {
		slog.Error("failed to create dispatcher", "err", err)
		os.Exit(1)
	}

	// ---- Telegram ----
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("failed to create telegram client", "err", err)
		os.Exit(1)
	}

	b, err := bot.New(api, dispatcher, cfg.MaxMessageLength)
	if err != nil {
		slog.Error("failed to create bot", "err", err)
		os.Exit(1)
	}

	// ---- Status server ----
	srv, err := web.New(dispatcher)
	if err != nil {
		slog.Error("failed to create status server", "err", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("status server listening", "addr", cfg.ListenAddr)
		if err := srv.Run(cfg.ListenAddr); err != nil {
			slog.Error("status server stopped", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("bot is running", "services", dispatcher.ServiceNames(), "timeout", cfg.RequestTimeout)
	b.Run(ctx)
	slog.Info("shut down")
}

// buildServices creates one relay service per configured credential, in
// configuration order. A missing credential simply omits that service.
func buildServices(cfg config.Config) ([]relay.Service, error) {
	var services []relay.Service

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel))
		if err != nil {
			return nil, err
		}
		services = append(services, relay.Service{Name: "Gemini AI", Client: client})
	}

	if cfg.TogetherAPIKey != "" {
		client, err := together.NewClient(cfg.TogetherAPIKey, together.WithModel(cfg.TogetherModel))
		if err != nil {
			return nil, err
		}
		services = append(services, relay.Service{Name: "Together.ai", Client: client})
	}

	return services, nil
}
