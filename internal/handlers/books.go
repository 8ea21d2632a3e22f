package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"bookbot/internal/document"
	"bookbot/internal/indexer"
	"bookbot/internal/service"
)

// DefaultMaxUploadBytes caps a single uploaded document.
const DefaultMaxUploadBytes = 32 << 20

// BooksHandler serves the library endpoints.
type BooksHandler struct {
	library        LibraryService
	booksDir       string
	maxUploadBytes int64
}

// NewBooksHandler creates a new BooksHandler. booksDir is ingested when an
// upload request carries no file.
func NewBooksHandler(library LibraryService, booksDir string) *BooksHandler {
	return &BooksHandler{
		library:        library,
		booksDir:       booksDir,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Upload ingests the multipart "file" part, or the whole books folder when
// the request has no file.
func (h *BooksHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		h.uploadFolder(w, r)
		return
	case err != nil:
		HandleError(ctx, w, service.NewValidationError("file", "invalid upload: "+err.Error()), "upload")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	name := filepath.Base(header.Filename)
	if !document.Supported(name) {
		HandleError(ctx, w, service.NewValidationError("file", fmt.Sprintf("unsupported file type %q", filepath.Ext(name))), "upload")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		HandleError(ctx, w, service.NewValidationError("file", "failed to read upload"), "upload")
		return
	}
	raw, err := document.ReadBytes(name, data)
	if err != nil {
		HandleError(ctx, w, service.NewValidationError("file", err.Error()), "upload")
		return
	}

	res := h.library.IngestDocument(ctx, name, raw)
	switch res.Status {
	case indexer.StatusUploaded:
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "result": res})
	case indexer.StatusSkipped:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
	default:
		HandleError(ctx, w, res.Err, "upload")
	}
}

func (h *BooksHandler) uploadFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.library.IngestAll(ctx, h.booksDir)
	if errors.Is(err, indexer.ErrFolderUnavailable) {
		HandleError(ctx, w, service.NewError(service.ErrNotFound, err.Error()), "upload folder")
		return
	}
	if err != nil {
		HandleError(ctx, w, err, "upload folder")
		return
	}

	summary := indexer.Summarize(results)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": map[string]any{
			"uploaded":     summary.Uploaded,
			"skipped":      summary.Skipped,
			"errors":       summary.Errors,
			"total_chunks": summary.TotalChunks,
			"chunk_stats":  summary.ChunkStats,
		},
		"details": results,
	})
}

// List returns the stored books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	books, err := h.library.ListBooks(ctx)
	if err != nil {
		HandleError(ctx, w, err, "list books")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"books":   books,
		"total":   len(books),
	})
}

// Delete removes a book and its chunks.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "bookID")

	res, err := h.library.DeleteBook(ctx, bookID)
	if err != nil {
		HandleError(ctx, w, err, "delete book")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"book_id":        res.BookID,
		"title":          res.Title,
		"chunks_deleted": res.ChunksDeleted,
	})
}
