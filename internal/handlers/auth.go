package handlers

import (
	"net/http"

	"bookbot/internal/contextutil"
)

// AuthHandler serves the account endpoints.
type AuthHandler struct {
	identity IdentityService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identity IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register creates an account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(ctx, w, err, "register")
		return
	}

	res, err := h.identity.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		HandleError(ctx, w, err, "register")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"user_id":  res.UserID,
		"username": res.Username,
	})
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(ctx, w, err, "login")
		return
	}

	res, err := h.identity.Login(ctx, req.Username, req.Password)
	if err != nil {
		HandleError(ctx, w, err, "login")
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "user logged in", "username", res.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"token":      res.Token,
		"user_id":    res.UserID,
		"username":   res.Username,
		"expires_in": res.ExpiresIn,
	})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "token required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    caller.Identity,
	})
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := CallerFromContext(ctx)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "token required")
		return
	}

	var req ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		HandleError(ctx, w, err, "change password")
		return
	}

	if err := h.identity.ChangePassword(ctx, caller.Token, req.OldPassword, req.NewPassword); err != nil {
		HandleError(ctx, w, err, "change password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "password updated",
	})
}

// Deactivate disables the caller's account.
func (h *AuthHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := CallerFromContext(ctx)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "token required")
		return
	}

	if err := h.identity.Deactivate(ctx, caller.Token); err != nil {
		HandleError(ctx, w, err, "deactivate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "account deactivated",
	})
}
