package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"soloq-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey      string
	ServerPort      string
	LogLevel        string
	PlatformURL     string
	RegionalURL     string
	FallbackAPIURL  string
	OpggBaseURL     string
	MatchQueue      int
	MatchWindow     int
	PrimaryDisabled bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:      getEnv("RIOT_API_KEY", ""),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "debug"),
		PlatformURL:     strings.TrimRight(getEnv("RIOT_PLATFORM_URL", constants.DefaultPlatformURL), "/"),
		RegionalURL:     strings.TrimRight(getEnv("RIOT_REGIONAL_URL", constants.DefaultRegionalURL), "/"),
		FallbackAPIURL:  getEnv("FALLBACK_API_URL", constants.DefaultFallbackURL),
		OpggBaseURL:     strings.TrimRight(getEnv("OPGG_BASE_URL", constants.DefaultOpggBaseURL), "/"),
		MatchQueue:      getEnvInt("MATCH_QUEUE", constants.SoloQueueID),
		MatchWindow:     getEnvInt("MATCH_WINDOW", constants.DefaultMatchWindow),
		PrimaryDisabled: getEnvBool("PRIMARY_DISABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("platform_url", cfg.PlatformURL).
		Str("regional_url", cfg.RegionalURL).
		Int("match_queue", cfg.MatchQueue).
		Int("match_window", cfg.MatchWindow).
		Bool("primary_disabled", cfg.PrimaryDisabled).
		Msg("configuration loaded")

	return cfg, nil
}

// Validate rejects configurations the report pipeline cannot run with.
func (c *Config) Validate() error {
	if c.RiotAPIKey == "" && !c.PrimaryDisabled {
		return fmt.Errorf("RIOT_API_KEY is required")
	}
	if c.MatchWindow < 0 || c.MatchWindow > constants.MaxMatchWindow {
		return fmt.Errorf("MATCH_WINDOW must be between 0 and %d, got %d", constants.MaxMatchWindow, c.MatchWindow)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
