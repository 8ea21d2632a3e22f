package handlers

import (
	"net/http"
	"strconv"

	"bookbot/internal/service"
)

// maxAskLimit caps the limit query parameter.
const maxAskLimit = 20

// AskHandler answers questions with the closest book passages.
type AskHandler struct {
	library LibraryService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(library LibraryService) *AskHandler {
	return &AskHandler{library: library}
}

// ServeHTTP handles GET /ask?q=...&limit=N.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	question := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			HandleError(ctx, w, service.NewValidationError("limit", "limit must be a positive integer"), "ask")
			return
		}
		limit = min(n, maxAskLimit)
	}

	hits, err := h.library.Search(ctx, question, limit)
	if err != nil {
		HandleError(ctx, w, err, "ask")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"question": question,
		"results":  hits,
	})
}
