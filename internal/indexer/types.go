package indexer

// Status is the outcome of ingesting one document.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
)

// IngestResult reports what happened to one document.
type IngestResult struct {
	Status      Status `json:"status"`
	File        string `json:"file,omitempty"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Year        int    `json:"year,omitempty"`
	Language    string `json:"language,omitempty"`
	BookID      string `json:"book_id,omitempty"`
	TotalChunks int    `json:"total_chunks,omitempty"`
	// ChunksCreated and ChunksFailed are set when chunk writes partially failed.
	ChunksCreated int    `json:"chunks_created,omitempty"`
	ChunksFailed  int    `json:"chunks_failed,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Error         string `json:"error,omitempty"`

	// Err is the underlying failure for StatusError results.
	Err error `json:"-"`
}

// Book is a stored book record.
type Book struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	Language string `json:"language"`
}

// SearchHit is a chunk matching a question, with the book it belongs to.
type SearchHit struct {
	Content    string  `json:"content"`
	ChunkIndex int     `json:"chunk_index"`
	BookID     string  `json:"book_id,omitempty"`
	Title      string  `json:"title,omitempty"`
	Author     string  `json:"author,omitempty"`
	Score      float32 `json:"score"`
}

// DeleteResult reports a completed book deletion.
type DeleteResult struct {
	BookID        string `json:"book_id"`
	Title         string `json:"title"`
	ChunksDeleted int    `json:"chunks_deleted"`
}
