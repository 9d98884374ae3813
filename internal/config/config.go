// ABOUTME: Centralized configuration for the document QA engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Refresh modes for the vector cache
const (
	RefreshLazy  = "lazy"
	RefreshEager = "eager"
)

// Storage backends
const (
	StorageLocal  = "local"
	StorageMinio  = "minio"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds all configuration for the engine
type Config struct {
	// Server settings
	Port           int
	AuthToken      string
	RequestTimeout time.Duration
	MaxUploadBytes int64

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	EmbedBatchSize int
	UpstreamRPS    float64
	MaxRetries     int
	RetryDelay     time.Duration

	// Chunking and retrieval settings
	ChunkSize              int
	ChunkOverlap           int
	TopK                   int
	MaxContextChars        int
	MaxConcurrentQuestions int

	// Confidence bucket thresholds
	ConfidenceHigh   float64
	ConfidenceMedium float64

	// Cache settings
	CacheRefreshMode string

	// Storage settings
	StorageBackend string
	StorageDir     string
	SQLitePath     string
	MinioEndpoint  string
	MinioBucket    string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		AuthToken:      os.Getenv("AUTH_TOKEN"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),

		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 64),
		UpstreamRPS:    getEnvFloat("UPSTREAM_RPS", 8),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("RETRY_DELAY", 2*time.Second),

		ChunkSize:              getEnvInt("CHUNK_SIZE", 1500),
		ChunkOverlap:           getEnvInt("CHUNK_OVERLAP", 200),
		TopK:                   getEnvInt("TOP_K", 5),
		MaxContextChars:        getEnvInt("MAX_CONTEXT_CHARS", 10000),
		MaxConcurrentQuestions: getEnvInt("MAX_CONCURRENT_QUESTIONS", 5),

		ConfidenceHigh:   getEnvFloat("CONFIDENCE_HIGH", 0.7),
		ConfidenceMedium: getEnvFloat("CONFIDENCE_MEDIUM", 0.4),

		CacheRefreshMode: getEnv("CACHE_REFRESH_MODE", RefreshLazy),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageLocal),
		StorageDir:     getEnv("STORAGE_DIR", "./data"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/docqa.db"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioBucket:    getEnv("MINIO_BUCKET", "docqa"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", true),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be 1-65535, got %d", c.Port)
	}
	if c.ChunkOverlap <= 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in (0, CHUNK_SIZE=%d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	if c.MaxConcurrentQuestions < 1 {
		return fmt.Errorf("MAX_CONCURRENT_QUESTIONS must be positive, got %d", c.MaxConcurrentQuestions)
	}
	if c.ConfidenceMedium < 0 || c.ConfidenceHigh > 1 || c.ConfidenceMedium > c.ConfidenceHigh {
		return fmt.Errorf("confidence thresholds must satisfy 0 <= CONFIDENCE_MEDIUM <= CONFIDENCE_HIGH <= 1, got %f/%f",
			c.ConfidenceMedium, c.ConfidenceHigh)
	}
	if c.CacheRefreshMode != RefreshLazy && c.CacheRefreshMode != RefreshEager {
		return fmt.Errorf("CACHE_REFRESH_MODE must be %q or %q, got %q", RefreshLazy, RefreshEager, c.CacheRefreshMode)
	}
	switch c.StorageBackend {
	case StorageLocal, StorageSQLite, StorageMemory:
	case StorageMinio:
		if c.MinioEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be local, minio, sqlite, or memory, got %q", c.StorageBackend)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
