package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kapu/fitplan-engine-go/internal/constants"
)

type Config struct {
	HTTP          HTTPConfig
	Catalog       CatalogConfig
	Gemini        GeminiConfig
	OpenAI        OpenAIConfig
	PlanCache     PlanCacheConfig
	Redis         RedisConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

type HTTPConfig struct {
	Addr         string
	AllowOrigins []string
	MaxBodyBytes int64
}

type CatalogConfig struct {
	BaseURL  string
	PageSize int
	MaxPages int
	Language int
	APIToken string
	Warmup   bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// EnableFallback lets a failed primary call be retried once on OpenAI.
	// A request may then make two model calls instead of one; off by default.
	EnableFallback bool
}

const (
	PlanCacheMemory = "memory"
	PlanCacheRedis  = "redis"
)

type PlanCacheConfig struct {
	Backend string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LoggingConfig struct {
	Level  string
	File   string
	Format string
}

type ObservabilityConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRatio float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:         getEnv("HTTP_ADDR", ":8080"),
			AllowOrigins: parseCommaSeparated(getEnv("CORS_ALLOW_ORIGINS", "*")),
			MaxBodyBytes: int64(getEnvInt("HTTP_MAX_BODY_BYTES", 1<<20)),
		},
		Catalog: CatalogConfig{
			BaseURL:  getEnv("CATALOG_BASE_URL", constants.CatalogConfig.BaseURL),
			PageSize: getEnvInt("CATALOG_PAGE_SIZE", constants.CatalogConfig.PageSize),
			MaxPages: getEnvInt("CATALOG_MAX_PAGES", constants.CatalogConfig.MaxPages),
			Language: getEnvInt("CATALOG_LANGUAGE", constants.CatalogConfig.LanguageCode),
			APIToken: getEnv("CATALOG_API_TOKEN", ""),
			Warmup:   getEnvBool("CATALOG_WARMUP", false),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", constants.ModelDefaults.GeminiModel),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", constants.ModelDefaults.OpenAIModel),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", false),
		},
		PlanCache: PlanCacheConfig{
			Backend: strings.ToLower(getEnv("PLAN_CACHE_BACKEND", PlanCacheMemory)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			File:   getEnv("LOG_FILE", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Observability: ObservabilityConfig{
			Enabled:     getEnvBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "fitplan-engine"),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			SampleRatio: getEnvFloat("OTEL_SAMPLER_RATIO", 0.1),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" && c.OpenAI.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY or OPENAI_API_KEY is required")
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("CATALOG_BASE_URL is required")
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.MaxPages <= 0 {
		return fmt.Errorf("CATALOG_MAX_PAGES must be positive, got %d", c.Catalog.MaxPages)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive, got %d", c.HTTP.MaxBodyBytes)
	}
	switch c.PlanCache.Backend {
	case PlanCacheMemory, PlanCacheRedis:
	default:
		return fmt.Errorf("PLAN_CACHE_BACKEND must be %q or %q, got %q", PlanCacheMemory, PlanCacheRedis, c.PlanCache.Backend)
	}
	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLER_RATIO must be within [0,1], got %v", c.Observability.SampleRatio)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
