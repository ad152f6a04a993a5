package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Builder provider names accepted in BUILDER_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Bot transport modes accepted in BOT_MODE.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config carries all runtime settings, read once from the environment.
type Config struct {
	TelegramToken   string
	BuilderProvider string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	Mode            string
	Port            string
	LogMode         string
}

// Load reads .env if present, then the environment. Missing required values
// are an error; the caller decides whether that is fatal.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		BuilderProvider: getenvDefault("BUILDER_PROVIDER", ProviderGemini),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		Mode:            getenvDefault("BOT_MODE", ModePolling),
		Port:            getenvDefault("PORT", "8080"),
		LogMode:         getenvDefault("LOG_MODE", "dev"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable must be set")
	}

	switch cfg.BuilderProvider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable must be set for the gemini provider")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable must be set for the openai provider")
		}
	default:
		return nil, fmt.Errorf("unknown BUILDER_PROVIDER %q", cfg.BuilderProvider)
	}

	if cfg.Mode != ModePolling && cfg.Mode != ModeWebhook {
		return nil, fmt.Errorf("unknown BOT_MODE %q", cfg.Mode)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
