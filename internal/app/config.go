package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
)

// Tracking store kinds.
const (
	TrackingNone     = "none"
	TrackingMemory   = "memory"
	TrackingSQLite   = "sqlite"
	TrackingRedis    = "redis"
	TrackingPostgres = "postgres"
)

// LLM cache kinds.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	// Folder holding one sub folder per saved node
	NodesDir string
	LogLevel string

	// Tracking store configuration
	Tracking      string // none, memory, sqlite, redis or postgres
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	PostgresURL   string
	RunTTL        time.Duration

	// LLM configuration
	LLMCache        string // none, memory or redis
	LLMCacheTTL     time.Duration
	OpenAIKey       string
	OpenAIBaseURL   string
	AnthropicKey    string
	AzureKey        string
	AzureEndpoint   string
	AzureAPIVersion string
}

// LoadConfig loads configuration from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		NodesDir:        getEnv("HYPERNODES_NODES_DIR", "nodes"),
		LogLevel:        getEnv("HYPERNODES_LOG_LEVEL", "info"),
		Tracking:        getEnv("HYPERNODES_TRACKING", TrackingSQLite),
		SQLitePath:      getEnv("HYPERNODES_SQLITE_PATH", "hypernodes.db"),
		RedisAddr:       getEnv("HYPERNODES_REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("HYPERNODES_REDIS_PASSWORD"),
		PostgresURL:     os.Getenv("HYPERNODES_POSTGRES_URL"),
		RunTTL:          getEnvDuration("HYPERNODES_RUN_TTL", 0),
		LLMCache:        getEnv("HYPERNODES_LLM_CACHE", CacheMemory),
		LLMCacheTTL:     getEnvDuration("HYPERNODES_LLM_CACHE_TTL", 24*time.Hour),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AzureKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
		AzureEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureAPIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
	}
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.Tracking {
	case TrackingNone, TrackingMemory:
	case TrackingSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("HYPERNODES_SQLITE_PATH is required for sqlite tracking")
		}
	case TrackingRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("HYPERNODES_REDIS_ADDR is required for redis tracking")
		}
	case TrackingPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("HYPERNODES_POSTGRES_URL is required for postgres tracking")
		}
	default:
		return fmt.Errorf("unknown tracking store %q", c.Tracking)
	}

	switch c.LLMCache {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("HYPERNODES_REDIS_ADDR is required for the redis llm cache")
		}
	default:
		return fmt.Errorf("unknown llm cache %q", c.LLMCache)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := cast.ToDurationE(value)
	if err != nil {
		return defaultValue
	}
	return d
}
