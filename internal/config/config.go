package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Podzine server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
}

type ServerConfig struct {
	Port           int
	Env            string
	LogLevel       slog.Level
	MaxUploadBytes int64
	UploadDir      string
}

// DatabaseConfig configures the optional article archive. An empty URL
// disables archiving.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional transcript cache. An empty URL disables it.
type RedisConfig struct {
	URL           string
	TranscriptTTL time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	Gemini           GeminiConfig
}

type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	Model              string
	ImageModel         string
	MaxTokens          int
	Temperature        float32
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string
}

var validProviders = map[string]bool{
	"openai": true,
	"gemini": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("PODZINE_PORT", 8080),
			Env:            envString("PODZINE_ENV", "development"),
			LogLevel:       envLevel("PODZINE_LOG_LEVEL", slog.LevelInfo),
			MaxUploadBytes: int64(envInt("PODZINE_MAX_UPLOAD_MB", 25)) << 20,
			UploadDir:      envString("PODZINE_UPLOAD_DIR", os.TempDir()),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:           os.Getenv("REDIS_URL"),
			TranscriptTTL: envDuration("TRANSCRIPT_CACHE_TTL", 24*time.Hour),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:             os.Getenv("OPENAI_API_KEY"),
				BaseURL:            os.Getenv("OPENAI_BASE_URL"),
				TranscriptionModel: envString("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
				Model:              envString("OPENAI_MODEL", "gpt-4o-mini"),
				ImageModel:         envString("OPENAI_IMAGE_MODEL", "dall-e-3"),
				MaxTokens:          envInt("OPENAI_MAX_TOKENS", 1000),
				Temperature:        envFloat32("OPENAI_TEMPERATURE", 0.7),
			},
			Gemini: GeminiConfig{
				APIKey:     os.Getenv("GEMINI_API_KEY"),
				Model:      envString("GEMINI_MODEL", "gemini-2.0-flash"),
				ImageModel: envString("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PODZINE_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("PODZINE_MAX_UPLOAD_MB must be positive")
	}

	if c.Database.URL != "" &&
		!strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://, got %q", c.Database.URL)
	}

	if c.Redis.URL != "" &&
		!strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, gemini; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat32(key string, defaultVal float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

// envLevel accepts debug, info, warn or error.
func envLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return lvl
}
