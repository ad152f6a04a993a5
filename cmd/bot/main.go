package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"senseibot/internal/builder"
	"senseibot/internal/config"
	"senseibot/internal/logger"
	"senseibot/internal/pdf"
	"senseibot/internal/quiz"
	"senseibot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var artifactBuilder builder.Builder
	switch cfg.BuilderProvider {
	case config.ProviderGemini:
		geminiBuilder, err := builder.NewGeminiBuilder(ctx, cfg.GeminiAPIKey)
		if err != nil {
			lg.Fatal("failed to initialize Gemini builder", "error", err)
		}
		defer geminiBuilder.Close()
		artifactBuilder = geminiBuilder
	case config.ProviderOpenAI:
		artifactBuilder = builder.NewOpenAIBuilder(cfg.OpenAIAPIKey)
	}

	engine := quiz.NewEngine(quiz.NewMemoryStore())
	renderer := pdf.NewRenderer()

	bot, err := telegram.New(cfg.TelegramToken, engine, artifactBuilder, renderer, lg)
	if err != nil {
		lg.Fatal("failed to initialize bot", "error", err)
	}

	lg.Info("bot starting", "mode", cfg.Mode, "provider", cfg.BuilderProvider)

	switch cfg.Mode {
	case config.ModeWebhook:
		runWebhook(ctx, cfg.Port, bot, lg)
	default:
		bot.Run(ctx)
	}

	lg.Info("bot exited")
}

func runWebhook(ctx context.Context, port string, bot *telegram.Bot, lg *logger.Logger) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: bot.WebhookRouter(),
	}

	go func() {
		lg.Info("webhook server listening", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("webhook server failed", "error", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down webhook server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("webhook server forced to shut down", "error", err)
	}
}
