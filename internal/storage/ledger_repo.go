package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_key_ledger.go -package=mocks bookbot/internal/storage KeyLedger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyReserved is returned when another owner holds the key.
	ErrAlreadyReserved = errors.New("key already reserved")
)

// KeyLedger enforces uniqueness of keys the vector store cannot constrain itself.
type KeyLedger interface {
	// Reserve claims key in namespace for ownerID.
	// Returns ErrAlreadyReserved if the key is held by anyone, including ownerID.
	Reserve(ctx context.Context, namespace, key, ownerID string) error
	// Release frees key in namespace. Releasing a free key is not an error.
	Release(ctx context.Context, namespace, key string) error
	// Get returns the reservation for key in namespace, or ErrNotFound.
	Get(ctx context.Context, namespace, key string) (*Reservation, error)
	// Reclaim hands key over from staleOwner to ownerID.
	// Returns ErrAlreadyReserved if staleOwner no longer holds the key.
	Reclaim(ctx context.Context, namespace, key, staleOwner, ownerID string) error
}

// ReservationGrace is how long a reservation is trusted before its owner
// record must exist in the store.
const ReservationGrace = 5 * time.Minute

// OwnerExists reports whether the record that owns a reservation is stored.
type OwnerExists func(ctx context.Context, ownerID string) (bool, error)

// Claim reserves key for ownerID. A key that is held by an owner older than
// ReservationGrace whose record is missing from the store is taken over, so
// a failed release or a crash between reserving and creating does not block
// the key forever.
func Claim(ctx context.Context, ledger KeyLedger, namespace, key, ownerID string, exists OwnerExists, now time.Time) error {
	err := ledger.Reserve(ctx, namespace, key, ownerID)
	if !errors.Is(err, ErrAlreadyReserved) {
		return err
	}

	held, getErr := ledger.Get(ctx, namespace, key)
	if errors.Is(getErr, ErrNotFound) {
		return ledger.Reserve(ctx, namespace, key, ownerID)
	}
	if getErr != nil {
		return getErr
	}
	if now.Sub(held.CreatedAt) < ReservationGrace {
		return err
	}

	alive, existsErr := exists(ctx, held.OwnerID)
	if existsErr != nil {
		return existsErr
	}
	if alive {
		return err
	}
	return ledger.Reclaim(ctx, namespace, key, held.OwnerID, ownerID)
}

// LedgerRepo is the SQLite implementation of KeyLedger.
type LedgerRepo struct {
	db *sql.DB
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Reserve claims key in namespace for ownerID.
func (r *LedgerRepo) Reserve(ctx context.Context, namespace, key, ownerID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reservations (namespace, key, owner_id) VALUES (?, ?, ?)",
		namespace, key, ownerID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %q: %w", namespace, key, ErrAlreadyReserved)
	}
	if err != nil {
		return fmt.Errorf("failed to reserve key: %w", err)
	}
	return nil
}

// Release frees key in namespace.
func (r *LedgerRepo) Release(ctx context.Context, namespace, key string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM reservations WHERE namespace = ? AND key = ?",
		namespace, key,
	)
	if err != nil {
		return fmt.Errorf("failed to release key: %w", err)
	}
	return nil
}

// Reclaim hands key over from staleOwner to ownerID and restarts its grace period.
func (r *LedgerRepo) Reclaim(ctx context.Context, namespace, key, staleOwner, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET owner_id = ?, created_at = CURRENT_TIMESTAMP
		 WHERE namespace = ? AND key = ? AND owner_id = ?`,
		ownerID, namespace, key, staleOwner,
	)
	if err != nil {
		return fmt.Errorf("failed to reclaim key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reclaim key: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", namespace, key, ErrAlreadyReserved)
	}
	return nil
}

// Get returns the reservation for key in namespace.
// Returns nil and ErrNotFound if the key is free.
func (r *LedgerRepo) Get(ctx context.Context, namespace, key string) (*Reservation, error) {
	var res Reservation
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT namespace, key, owner_id, created_at FROM reservations WHERE namespace = ? AND key = ?",
		namespace, key,
	).Scan(&res.Namespace, &res.Key, &res.OwnerID, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}

	res.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &res, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// parseTimestamp accepts both formats SQLite hands back for DATETIME columns.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
