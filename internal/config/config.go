package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/npcforge/dialogue-engine/pkg/game"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL   string
	SessionTTL time.Duration

	MongoURI string
	MongoDB  string

	Provider     string
	OpenAIAPIKey string
	OpenAIModel  string
	EmbedModel   string
	GeminiAPIKey string
	GeminiModel  string

	ClassifierURL   string
	ClassifierModel string
	ClassifierKey   string

	DriftThreshold float64
	RankLimit      int
	ContentRating  string

	DefaultContext game.Context
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "dialogue_engine"),

		Provider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		EmbedModel:   getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		ClassifierURL:   getEnv("CLASSIFIER_URL", "https://api-inference.huggingface.co"),
		ClassifierModel: getEnv("CLASSIFIER_MODEL", "bhadresh-savani/bert-base-uncased-emotion"),
		ClassifierKey:   os.Getenv("CLASSIFIER_API_KEY"),

		DriftThreshold: getFloat("DRIFT_THRESHOLD", 0.5),
		RankLimit:      getInt("MEMORY_RANK_LIMIT", 10),
		ContentRating:  os.Getenv("CONTENT_RATING"),

		DefaultContext: game.Context{
			Location: getEnv("DEFAULT_LOCATION", "forest"),
			Quest:    getEnv("DEFAULT_QUEST", "find_artifact"),
			HP:       game.IntPtr(getInt("DEFAULT_HP", 80)),
			MP:       game.IntPtr(getInt("DEFAULT_MP", 50)),
			Status:   getEnv("DEFAULT_STATUS", "healthy"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", ProviderOpenAI)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=%s", ProviderGemini)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
	if c.DriftThreshold < -1 || c.DriftThreshold > 1 {
		return fmt.Errorf("DRIFT_THRESHOLD %v out of range [-1, 1]", c.DriftThreshold)
	}
	if c.RankLimit <= 0 {
		return fmt.Errorf("MEMORY_RANK_LIMIT must be positive, got %d", c.RankLimit)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
