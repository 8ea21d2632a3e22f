package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookbot/internal/contextutil"
	"bookbot/internal/document"
	"bookbot/internal/service"
	"bookbot/internal/storage"
	"bookbot/internal/vectorstore"
)

const (
	// DefaultChunkSize is the number of words per chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the number of words shared by consecutive chunks.
	DefaultChunkOverlap = 100
	// DefaultBatchSize is the number of chunks written per store request.
	DefaultBatchSize = 50
	// DefaultSearchLimit is used when a search asks for no explicit limit.
	DefaultSearchLimit = 5
	// listLimit caps ListBooks.
	listLimit = 100
	// bookRef is the chunk property referencing its book.
	bookRef = "book"
)

// ErrFolderUnavailable is returned by IngestAll when the books folder cannot be scanned.
var ErrFolderUnavailable = errors.New("books folder unavailable")

// Config holds the chunking parameters of a pipeline.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// DefaultConfig returns the default chunking parameters.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		BatchSize:    DefaultBatchSize,
	}
}

// IngestionRecorder keeps the per-file ingestion history.
type IngestionRecorder interface {
	Upsert(ctx context.Context, rec *storage.IngestionRecord) error
}

// Pipeline ingests books into the vector store and removes them again.
type Pipeline struct {
	store     vectorstore.Store
	ledger    storage.KeyLedger
	history   IngestionRecorder
	chunker   *WordChunker
	batchSize int
	newID     func() string
	now       func() time.Time
}

// NewPipeline creates a new ingestion pipeline. ledger may be nil, in which
// case the store lookup is the only duplicate check.
func NewPipeline(store vectorstore.Store, ledger storage.KeyLedger, cfg Config) (*Pipeline, error) {
	chunker, err := NewWordChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		store:     store,
		ledger:    ledger,
		chunker:   chunker,
		batchSize: batchSize,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}, nil
}

// WithHistory records every file ingestion outcome in h.
func (p *Pipeline) WithHistory(h IngestionRecorder) *Pipeline {
	p.history = h
	return p
}

// bookKey is the dedup key of a book in the ledger.
func bookKey(title, author string) string {
	return title + "\x1f" + author
}

// IngestFile reads and ingests one document from disk.
func (p *Pipeline) IngestFile(ctx context.Context, path string) IngestResult {
	logger := contextutil.LoggerFromContext(ctx)
	name := filepath.Base(path)

	raw, err := document.ReadFile(path)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read document", "file", name, "error", err)
		res := errorResult(name, err)
		p.record(ctx, path, "", res)
		return res
	}

	res := p.IngestDocument(ctx, name, raw)
	p.record(ctx, path, raw, res)
	return res
}

func (p *Pipeline) record(ctx context.Context, path, raw string, res IngestResult) {
	if p.history == nil {
		return
	}
	reason := res.Reason
	if res.Error != "" {
		reason = res.Error
	}
	rec := &storage.IngestionRecord{
		Path:   path,
		Hash:   fmt.Sprintf("%x", sha256.Sum256([]byte(raw))),
		Status: string(res.Status),
		BookID: res.BookID,
		Title:  res.Title,
		Author: res.Author,
		Chunks: res.TotalChunks,
		Reason: reason,
	}
	if err := p.history.Upsert(ctx, rec); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to record ingestion", "file", res.File, "error", err)
	}
}

// IngestDocument normalizes raw, skips it if a book with the same title and
// author exists, and otherwise stores the book and its chunks.
func (p *Pipeline) IngestDocument(ctx context.Context, name, raw string) IngestResult {
	logger := contextutil.LoggerFromContext(ctx).With("file", name)

	clean, meta, err := document.Normalize(raw)
	if err != nil {
		return errorResult(name, service.NewValidationError("document", err.Error()))
	}

	res := IngestResult{
		File:     name,
		Title:    meta.Title,
		Author:   meta.Author,
		Year:     meta.Year,
		Language: meta.Language,
	}

	existing, err := p.findBook(ctx, meta.Title, meta.Author)
	if err != nil {
		return res.fail(service.StoreError(err, "dedup lookup"))
	}
	if existing != nil {
		logger.InfoContext(ctx, "book already exists", "title", meta.Title, "author", meta.Author, "book_id", existing.ID)
		res.Status = StatusSkipped
		res.BookID = existing.ID
		res.Reason = "already exists"
		return res
	}

	bookID := p.newID()
	key := bookKey(meta.Title, meta.Author)
	if p.ledger != nil {
		if err := storage.Claim(ctx, p.ledger, storage.NamespaceBook, key, bookID, p.bookExists, p.now()); err != nil {
			if errors.Is(err, storage.ErrAlreadyReserved) {
				logger.InfoContext(ctx, "book reserved by another ingestion", "title", meta.Title, "author", meta.Author)
				res.Status = StatusSkipped
				res.Reason = "already exists"
				return res
			}
			return res.fail(service.WrapError(err, "reserve book key"))
		}
	}

	err = p.store.Create(ctx, vectorstore.KindBook, bookID, vectorstore.Fields{
		"title":    meta.Title,
		"author":   meta.Author,
		"year":     meta.Year,
		"language": meta.Language,
	})
	if err != nil {
		p.release(ctx, key)
		if errors.Is(err, vectorstore.ErrUniqueViolation) {
			res.Status = StatusSkipped
			res.Reason = "already exists"
			return res
		}
		return res.fail(service.StoreError(err, "create book"))
	}
	res.BookID = bookID

	chunks := p.chunker.Split(clean)
	res.TotalChunks = len(chunks)

	created, err := p.writeChunks(ctx, bookID, chunks)
	if err != nil {
		res.ChunksCreated = len(created)
		res.ChunksFailed = len(chunks) - len(created)
		logger.ErrorContext(ctx, "chunk write failed", "book_id", bookID, "created", len(created), "failed", res.ChunksFailed, "error", err)

		if rbErr := p.rollback(ctx, bookID, key, created); rbErr != nil {
			logger.ErrorContext(ctx, "rollback incomplete", "book_id", bookID, "error", rbErr)
			return res.fail(fmt.Errorf("%w: rollback of book %s incomplete: %w", service.ErrInconsistentState, bookID, errors.Join(err, rbErr)))
		}
		res.BookID = ""
		return res.fail(service.StoreError(err, "write chunks"))
	}

	logger.InfoContext(ctx, "book uploaded", "title", meta.Title, "author", meta.Author, "book_id", bookID, "chunks", len(chunks))
	res.Status = StatusUploaded
	return res
}

func (r IngestResult) fail(err error) IngestResult {
	r.Status = StatusError
	r.Err = err
	r.Error = service.PublicMessage(err)
	return r
}

func errorResult(file string, err error) IngestResult {
	return IngestResult{File: file}.fail(err)
}

func (p *Pipeline) findBook(ctx context.Context, title, author string) (*vectorstore.Record, error) {
	filter := vectorstore.And(
		vectorstore.Equal("title", title),
		vectorstore.Equal("author", author),
	)
	records, err := p.store.Get(ctx, vectorstore.KindBook, []string{"title", "author"}, &filter, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// writeChunks stores the chunks in batches and links each one to its book.
// It stops at the first failing batch or link and returns the ids written so far.
func (p *Pipeline) writeChunks(ctx context.Context, bookID string, chunks []string) ([]string, error) {
	created := make([]string, 0, len(chunks))

	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))

		objects := make([]vectorstore.Object, 0, end-start)
		for i := start; i < end; i++ {
			objects = append(objects, vectorstore.Object{
				ID: p.newID(),
				Fields: vectorstore.Fields{
					"content":     chunks[i],
					"chunk_index": i,
				},
			})
		}

		batchErr := p.store.CreateBatch(ctx, vectorstore.KindChunk, objects)
		failed := map[string]error{}
		if batchErr != nil {
			var be *vectorstore.BatchError
			if !errors.As(batchErr, &be) {
				return created, batchErr
			}
			failed = be.Failed
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "chunk batch partially failed",
				"book_id", bookID, "failed_ids", be.FailedIDs())
		}

		written := make([]string, 0, len(objects))
		for _, obj := range objects {
			if _, ok := failed[obj.ID]; !ok {
				written = append(written, obj.ID)
			}
		}
		created = append(created, written...)

		for _, id := range written {
			if err := p.store.Link(ctx, vectorstore.KindChunk, id, bookRef, vectorstore.KindBook, bookID); err != nil {
				return created, fmt.Errorf("link chunk %s: %w", id, err)
			}
		}

		if batchErr != nil {
			return created, batchErr
		}
	}

	return created, nil
}

// rollback removes a partially written book so a retry is not shadowed by the dedup check.
func (p *Pipeline) rollback(ctx context.Context, bookID, key string, chunkIDs []string) error {
	var errs []error
	for _, id := range chunkIDs {
		if err := p.store.Delete(ctx, vectorstore.KindChunk, id); err != nil {
			errs = append(errs, fmt.Errorf("delete chunk %s: %w", id, err))
		}
	}
	if len(errs) > 0 {
		// Keep the book so its remaining chunks are still reachable.
		return errors.Join(errs...)
	}
	if err := p.store.Delete(ctx, vectorstore.KindBook, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	p.release(ctx, key)
	return nil
}

// bookExists reports whether a book record with id is stored.
func (p *Pipeline) bookExists(ctx context.Context, id string) (bool, error) {
	filter := vectorstore.Equal(vectorstore.IDPath, id)
	records, err := p.store.Get(ctx, vectorstore.KindBook, nil, &filter, 1)
	if err != nil {
		return false, service.StoreError(err, "lookup book owner")
	}
	return len(records) > 0, nil
}

func (p *Pipeline) release(ctx context.Context, key string) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.Release(ctx, storage.NamespaceBook, key); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to release book key", "error", err)
	}
}

// IngestAll ingests every supported document under dir. Per-document failures
// are reported as error results and never abort the batch; only a folder
// that cannot be enumerated fails the call.
func (p *Pipeline) IngestAll(ctx context.Context, dir string) ([]IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	paths, err := document.Scan(ctx, dir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrFolderUnavailable, err)
	}

	logger.InfoContext(ctx, "starting ingestion", "dir", dir, "total_files", len(paths))

	results := make([]IngestResult, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		res := p.IngestFile(ctx, path)
		if res.Status == StatusError {
			logger.ErrorContext(ctx, "failed to ingest file", "file", res.File, "error", res.Error)
		}
		results = append(results, res)
	}

	summary := Summarize(results)
	logger.InfoContext(ctx, "ingestion completed",
		"total_files", len(paths),
		"uploaded", summary.Uploaded,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
		"chunks", summary.TotalChunks,
		"chunk_stats", summary.ChunkStats,
	)
	return results, nil
}

// ListBooks returns up to 100 stored books.
func (p *Pipeline) ListBooks(ctx context.Context) ([]Book, error) {
	records, err := p.store.Get(ctx, vectorstore.KindBook, []string{"title", "author", "year", "language"}, nil, listLimit)
	if err != nil {
		return nil, service.StoreError(err, "list books")
	}
	books := make([]Book, 0, len(records))
	for _, r := range records {
		books = append(books, toBook(r))
	}
	return books, nil
}

func toBook(r vectorstore.Record) Book {
	return Book{
		ID:       r.ID,
		Title:    r.String("title"),
		Author:   r.String("author"),
		Year:     r.Int("year"),
		Language: r.String("language"),
	}
}

// GetBook returns one stored book.
func (p *Pipeline) GetBook(ctx context.Context, bookID string) (*Book, error) {
	filter := vectorstore.Equal(vectorstore.IDPath, bookID)
	records, err := p.store.Get(ctx, vectorstore.KindBook, nil, &filter, 1)
	if err != nil {
		return nil, service.StoreError(err, "get book")
	}
	if len(records) == 0 {
		return nil, service.WrapError(service.ErrNotFound, "book "+bookID)
	}
	book := toBook(records[0])
	return &book, nil
}

// Search returns the chunks closest to question, each with its book's title and author.
func (p *Pipeline) Search(ctx context.Context, question string, limit int) ([]SearchHit, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, service.NewValidationError("q", "question cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	records, err := p.store.SemanticQuery(ctx, vectorstore.KindChunk, []string{"content", "chunk_index"}, []string{question}, limit)
	if err != nil {
		return nil, service.StoreError(err, "search chunks")
	}

	books := make(map[string]*Book)
	hits := make([]SearchHit, 0, len(records))
	for _, r := range records {
		hit := SearchHit{
			Content:    r.String("content"),
			ChunkIndex: r.Int("chunk_index"),
			BookID:     r.Refs[bookRef],
			Score:      r.Score,
		}
		if hit.BookID != "" {
			book, ok := books[hit.BookID]
			if !ok {
				book, err = p.GetBook(ctx, hit.BookID)
				if err != nil && !errors.Is(err, service.ErrNotFound) {
					return nil, err
				}
				books[hit.BookID] = book
			}
			if book != nil {
				hit.Title = book.Title
				hit.Author = book.Author
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DeleteBook frees the book's dedup key, then removes every chunk and the
// book itself. If a chunk cannot be deleted the book is kept and
// ErrInconsistentState is returned.
func (p *Pipeline) DeleteBook(ctx context.Context, bookID string) (*DeleteResult, error) {
	logger := contextutil.LoggerFromContext(ctx).With("book_id", bookID)

	book, err := p.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Release before deleting anything so a failure leaves the book intact.
	if p.ledger != nil {
		if err := p.ledger.Release(ctx, storage.NamespaceBook, bookKey(book.Title, book.Author)); err != nil {
			return nil, service.StoreError(err, "release book key")
		}
	}

	filter := vectorstore.Equal(vectorstore.RefPath(bookRef), bookID)
	chunks, err := p.store.Get(ctx, vectorstore.KindChunk, []string{"chunk_index"}, &filter, 0)
	if err != nil {
		return nil, service.StoreError(err, "list chunks")
	}

	for i, chunk := range chunks {
		if err := p.store.Delete(ctx, vectorstore.KindChunk, chunk.ID); err != nil {
			logger.ErrorContext(ctx, "chunk delete failed, keeping book", "chunk_id", chunk.ID, "deleted", i, "error", err)
			return nil, fmt.Errorf("%w: deleted %d of %d chunks of book %s, chunk %s: %w",
				service.ErrInconsistentState, i, len(chunks), bookID, chunk.ID, err)
		}
	}

	if err := p.store.Delete(ctx, vectorstore.KindBook, bookID); err != nil {
		return nil, service.StoreError(err, "delete book")
	}
	logger.InfoContext(ctx, "book deleted", "title", book.Title, "chunks", len(chunks))
	return &DeleteResult{BookID: bookID, Title: book.Title, ChunksDeleted: len(chunks)}, nil
}
