package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bookbot/internal/auth"
	"bookbot/internal/config"
	"bookbot/internal/contextutil"
	"bookbot/internal/handlers"
	"bookbot/internal/http"
	"bookbot/internal/identity"
	"bookbot/internal/indexer"
	"bookbot/internal/llm"
	"bookbot/internal/storage"
	"bookbot/internal/vectorstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	// The ledger is optional. Without it the store lookup is the only duplicate check.
	var (
		ledger  storage.KeyLedger
		history *storage.IngestionRepo
	)
	if cfg.LedgerDBPath != "" {
		db, err := storage.New(cfg.LedgerDBPath)
		if err != nil {
			log.Fatalf("Failed to open ledger database: %v", err)
		}
		defer func() {
			_ = db.Close()
		}()
		if err := storage.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		ledger = storage.NewLedgerRepo(db)
		history = storage.NewIngestionRepo(db)
		slog.Info("Ledger initialized", "path", cfg.LedgerDBPath)
	} else {
		slog.Warn("Ledger disabled, concurrent duplicate ingestion is not guarded")
	}

	embedder := llm.NewEmbeddingsClient(llm.EmbeddingsConfig{
		BaseURL:      cfg.EmbeddingBaseURL,
		APIKey:       cfg.LLMAPIKey,
		Model:        cfg.EmbeddingModelName,
		ExpectedSize: cfg.QdrantVectorSize,
	})

	store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
		URL:              cfg.QdrantURL,
		APIKey:           cfg.QdrantAPIKey,
		CollectionPrefix: cfg.QdrantCollectionPrefix,
		VectorSize:       cfg.QdrantVectorSize,
	}, embedder)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	created, err := store.EnsureSchema(ctx)
	if err != nil {
		log.Fatalf("Failed to ensure Qdrant collections: %v", err)
	}
	slog.Info("Qdrant collections ready", "prefix", cfg.QdrantCollectionPrefix, "created", len(created), "vector_size", cfg.QdrantVectorSize)

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.TokenTTL,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}
	identities := identity.NewService(store, tokens, ledger)

	pipeline, err := indexer.NewPipeline(store, ledger, indexer.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    cfg.ChunkBatchSize,
	})
	if err != nil {
		log.Fatalf("Failed to create ingestion pipeline: %v", err)
	}
	if history != nil {
		pipeline.WithHistory(history)
	}

	health := handlers.NewHealthHandler().
		WithCheck("vector_store", true, store.Health).
		WithCheck("embeddings", false, embedder.CheckModel)

	router := http.NewRouter(&http.Deps{
		Identity: identities,
		Library:  pipeline,
		Health:   health,
		BooksDir: cfg.BooksDir,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting API server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.IngestOnStart {
		g.Go(func() error {
			ingestBooks(gctx, pipeline, cfg.BooksDir)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("API server failed: %v", err)
	}
	slog.Info("API server stopped")
}

// ingestBooks loads the books folder once. Failures are logged, never fatal.
func ingestBooks(ctx context.Context, pipeline *indexer.Pipeline, dir string) {
	slog.Info("Starting background ingestion", "dir", dir)
	results, err := pipeline.IngestAll(ctx, dir)
	if err != nil {
		slog.Error("Background ingestion failed", "dir", dir, "error", err)
		return
	}
	summary := indexer.Summarize(results)
	slog.Info("Background ingestion completed",
		"files", summary.Files,
		"uploaded", summary.Uploaded,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"total_chunks", summary.TotalChunks,
		"chunk_stats", summary.ChunkStats,
	)
}
