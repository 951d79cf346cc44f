// Package config loads terminal configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Gateway  GatewayConfig  `koanf:"gateway"`
	Database DatabaseConfig `koanf:"database"`
	Logger   LoggerConfig   `koanf:"logger"`
}

// GatewayConfig is the merchant/terminal surface required by the vendor SDK.
// It is immutable for the duration of a session; changing it requires
// re-creating the session controller.
type GatewayConfig struct {
	Environment          string `koanf:"environment" validate:"required,oneof=sandbox qa production"`
	APIKey               string `koanf:"api_key" validate:"required"`
	SecretKey            string `koanf:"secret_key" validate:"required"`
	CurrencyCode         string `koanf:"currency_code" validate:"required,len=3"`
	MerchantID           string `koanf:"merchant_id" validate:"required"`
	AppleMerchantID      string `koanf:"apple_merchant_id"`
	MerchantName         string `koanf:"merchant_name" validate:"required"`
	MerchantCategoryCode string `koanf:"merchant_category_code" validate:"required"`
	TerminalID           string `koanf:"terminal_id" validate:"required"`
	TerminalProfileID    string `koanf:"terminal_profile_id" validate:"required"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// NewLogger builds the process logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("TAPTERM_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "TAPTERM_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
