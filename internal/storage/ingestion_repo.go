package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// IngestionRepo records the latest ingestion outcome per file.
type IngestionRepo struct {
	db *sql.DB
}

// NewIngestionRepo creates a new IngestionRepo.
func NewIngestionRepo(db *sql.DB) *IngestionRepo {
	return &IngestionRepo{db: db}
}

// Upsert stores rec, replacing any earlier outcome for the same path.
func (r *IngestionRepo) Upsert(ctx context.Context, rec *IngestionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingestions (path, hash, status, book_id, title, author, chunks, reason, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (path) DO UPDATE SET
		 hash = excluded.hash, status = excluded.status, book_id = excluded.book_id,
		 title = excluded.title, author = excluded.author, chunks = excluded.chunks,
		 reason = excluded.reason, updated_at = CURRENT_TIMESTAMP`,
		rec.Path, rec.Hash, rec.Status, rec.BookID, rec.Title, rec.Author, rec.Chunks, rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ingestion: %w", err)
	}
	return nil
}

// GetByPath returns the recorded outcome for path.
// Returns nil and ErrNotFound if the file was never ingested.
func (r *IngestionRepo) GetByPath(ctx context.Context, path string) (*IngestionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT path, hash, status, COALESCE(book_id, ''), COALESCE(title, ''), COALESCE(author, ''),
		 chunks, COALESCE(reason, ''), updated_at FROM ingestions WHERE path = ?`,
		path,
	)
	rec, err := scanIngestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingestion: %w", err)
	}
	return rec, nil
}

// List returns every recorded outcome, most recent first.
func (r *IngestionRepo) List(ctx context.Context) ([]*IngestionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT path, hash, status, COALESCE(book_id, ''), COALESCE(title, ''), COALESCE(author, ''),
		 chunks, COALESCE(reason, ''), updated_at FROM ingestions ORDER BY updated_at DESC, path`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingestions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []*IngestionRecord
	for rows.Next() {
		rec, err := scanIngestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingestion: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingestions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngestion(row rowScanner) (*IngestionRecord, error) {
	var rec IngestionRecord
	var updatedAtStr string
	if err := row.Scan(&rec.Path, &rec.Hash, &rec.Status, &rec.BookID, &rec.Title, &rec.Author,
		&rec.Chunks, &rec.Reason, &updatedAtStr); err != nil {
		return nil, err
	}
	t, err := parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	rec.UpdatedAt = t
	return &rec, nil
}
