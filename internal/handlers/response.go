package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bookbot/internal/contextutil"
	"bookbot/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInactiveAccount):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes the caller-facing message with the mapped status.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	logger := contextutil.LoggerFromContext(ctx)
	status := StatusFor(err)

	msg := service.PublicMessage(err)
	if status == http.StatusInternalServerError && !errors.Is(err, service.ErrInconsistentState) {
		msg = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, op+" failed", "error", err)
	} else {
		logger.WarnContext(ctx, op+" failed", "status", status, "error", err)
	}
	WriteError(w, status, msg)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.NewValidationError("body", "invalid request body")
	}
	return nil
}
