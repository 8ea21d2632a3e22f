package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	QdrantURL              string
	QdrantAPIKey           string
	QdrantCollectionPrefix string
	QdrantVectorSize       int

	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMAPIKey          string

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	ChunkSize      int
	ChunkOverlap   int
	ChunkBatchSize int

	BooksDir      string
	LedgerDBPath  string
	APIPort       string
	IngestOnStart bool

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		QdrantURL:              getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:           getEnv("QDRANT_API_KEY", ""),
		QdrantCollectionPrefix: getEnv("QDRANT_COLLECTION_PREFIX", "bookbot"),
		EmbeddingBaseURL:       getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName:     getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		LLMAPIKey:              getEnv("LLM_API_KEY", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		JWTIssuer:              getEnv("JWT_ISSUER", "bookbot"),
		BooksDir:               getEnv("BOOKS_DIR", "./books"),
		LedgerDBPath:           os.Getenv("LEDGER_DB_PATH"),
		APIPort:                getEnv("API_PORT", "8090"),
		LogFormat:              strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
	if _, set := os.LookupEnv("LEDGER_DB_PATH"); !set {
		cfg.LedgerDBPath = "./data/bookbot.db"
	}

	var err error
	if cfg.QdrantVectorSize, err = requiredPositiveInt("QDRANT_VECTOR_SIZE"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL must be a valid duration: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be greater than 0")
	}

	if cfg.ChunkSize, err = intEnv("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = intEnv("CHUNK_OVERLAP", 100); err != nil {
		return nil, err
	}
	if cfg.ChunkBatchSize, err = intEnv("CHUNK_BATCH_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be between 0 and CHUNK_SIZE-1")
	}
	if cfg.ChunkBatchSize <= 0 {
		return nil, fmt.Errorf("CHUNK_BATCH_SIZE must be greater than 0")
	}

	if cfg.IngestOnStart, err = strconv.ParseBool(getEnv("INGEST_ON_START", "true")); err != nil {
		return nil, fmt.Errorf("INGEST_ON_START must be a boolean: %w", err)
	}

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json")
	}

	return cfg, nil
}

// loadDotEnv loads the nearest .env file, looking at most 5 directories up.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 6; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func requiredPositiveInt(key string) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
