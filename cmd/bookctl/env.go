package main

import (
	"context"
	"fmt"

	"bookbot/internal/config"
	"bookbot/internal/indexer"
	"bookbot/internal/llm"
	"bookbot/internal/storage"
	"bookbot/internal/vectorstore"
)

// openEnv connects to the ledger and Qdrant using the process configuration.
func openEnv(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	env := &Env{BooksDir: cfg.BooksDir, Close: closeAll}

	var (
		ledger  storage.KeyLedger
		history *storage.IngestionRepo
	)
	if cfg.LedgerDBPath != "" {
		db, err := storage.New(cfg.LedgerDBPath)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := storage.Migrate(db); err != nil {
			closeAll()
			return nil, fmt.Errorf("migrate ledger: %w", err)
		}
		ledger = storage.NewLedgerRepo(db)
		history = storage.NewIngestionRepo(db)
		env.History = history
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
		closeAll()
		return nil, err
	}
	closers = append(closers, func() { _ = store.Close() })
	if err := store.Health(ctx); err != nil {
		closeAll()
		return nil, err
	}
	env.Schema = store

	pipeline, err := indexer.NewPipeline(store, ledger, indexer.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    cfg.ChunkBatchSize,
	})
	if err != nil {
		closeAll()
		return nil, err
	}
	if history != nil {
		pipeline.WithHistory(history)
	}
	env.Library = pipeline

	return env, nil
}
