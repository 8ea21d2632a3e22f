package storage

import "time"

// Reservation namespaces.
const (
	NamespaceBook  = "book"
	NamespaceUser  = "user"
	NamespaceEmail = "email"
)

// Reservation claims a unique key for the record that owns it.
type Reservation struct {
	Namespace string
	Key       string
	OwnerID   string
	CreatedAt time.Time
}

// IngestionRecord is the last recorded outcome of ingesting one file.
type IngestionRecord struct {
	Path      string
	Hash      string // SHA256 hex string of file content
	Status    string
	BookID    string
	Title     string
	Author    string
	Chunks    int
	Reason    string
	UpdatedAt time.Time
}
