package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// baseEnv sets the required variables on t.
func baseEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("QDRANT_VECTOR_SIZE", "768")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoad_Defaults(t *testing.T) {
	baseEnv(t)
	for _, key := range []string{
		"QDRANT_URL", "QDRANT_COLLECTION_PREFIX", "EMBEDDING_BASE_URL", "JWT_ISSUER",
		"TOKEN_TTL", "CHUNK_SIZE", "CHUNK_OVERLAP", "CHUNK_BATCH_SIZE", "BOOKS_DIR",
		"API_PORT", "LOG_LEVEL", "LOG_FORMAT", "INGEST_ON_START",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.QdrantURL != "http://localhost:6333" {
		t.Errorf("QdrantURL = %q", cfg.QdrantURL)
	}
	if cfg.QdrantCollectionPrefix != "bookbot" {
		t.Errorf("QdrantCollectionPrefix = %q", cfg.QdrantCollectionPrefix)
	}
	if cfg.QdrantVectorSize != 768 {
		t.Errorf("QdrantVectorSize = %d", cfg.QdrantVectorSize)
	}
	if cfg.JWTIssuer != "bookbot" || cfg.TokenTTL != 24*time.Hour {
		t.Errorf("JWTIssuer = %q, TokenTTL = %v", cfg.JWTIssuer, cfg.TokenTTL)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 100 || cfg.ChunkBatchSize != 50 {
		t.Errorf("chunking = %d/%d/%d", cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunkBatchSize)
	}
	if cfg.BooksDir != "./books" || cfg.APIPort != "8090" {
		t.Errorf("BooksDir = %q, APIPort = %q", cfg.BooksDir, cfg.APIPort)
	}
	if !cfg.IngestOnStart {
		t.Error("IngestOnStart should default to true")
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Errorf("LogLevel = %v, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_LedgerPath(t *testing.T) {
	t.Run("default when unset", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("LEDGER_DB_PATH", "")
		_ = os.Unsetenv("LEDGER_DB_PATH")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.LedgerDBPath != "./data/bookbot.db" {
			t.Errorf("LedgerDBPath = %q", cfg.LedgerDBPath)
		}
	})

	t.Run("empty disables the ledger", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("LEDGER_DB_PATH", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.LedgerDBPath != "" {
			t.Errorf("LedgerDBPath = %q, want empty", cfg.LedgerDBPath)
		}
	})
}

func TestLoad_Overrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("CHUNK_SIZE", "200")
	t.Setenv("CHUNK_OVERLAP", "20")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("INGEST_ON_START", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.ChunkSize != 200 || cfg.ChunkOverlap != 20 {
		t.Errorf("chunking = %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Errorf("LogLevel = %v, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.IngestOnStart {
		t.Error("IngestOnStart should be false")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "missing vector size", key: "QDRANT_VECTOR_SIZE", val: ""},
		{name: "non-numeric vector size", key: "QDRANT_VECTOR_SIZE", val: "wide"},
		{name: "zero vector size", key: "QDRANT_VECTOR_SIZE", val: "0"},
		{name: "missing secret", key: "JWT_SECRET", val: ""},
		{name: "bad ttl", key: "TOKEN_TTL", val: "tomorrow"},
		{name: "negative ttl", key: "TOKEN_TTL", val: "-1h"},
		{name: "overlap equals size", key: "CHUNK_OVERLAP", val: "1000"},
		{name: "bad chunk size", key: "CHUNK_SIZE", val: "big"},
		{name: "zero batch", key: "CHUNK_BATCH_SIZE", val: "0"},
		{name: "bad bool", key: "INGEST_ON_START", val: "maybe"},
		{name: "bad level", key: "LOG_LEVEL", val: "loud"},
		{name: "bad format", key: "LOG_FORMAT", val: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should return error", tt.key, tt.val)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BOOKBOT_TEST_VAR", "value")
	if got := getEnv("BOOKBOT_TEST_VAR", "default"); got != "value" {
		t.Errorf("getEnv() = %q, want value", got)
	}
	t.Setenv("BOOKBOT_TEST_VAR", "")
	if got := getEnv("BOOKBOT_TEST_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want default", got)
	}
}
