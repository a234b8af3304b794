package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/vcard-backend/internal/auth"
	"github.com/sakif/vcard-backend/internal/service"
)

// AuthHandler exposes registration, login, and logout.
//
// Register and login are the only unauthenticated mutating endpoints in the
// API; logout reads the bearer token itself (it can't sit behind RequireAuth,
// because an expired token should still be deletable without a 401 from the
// middleware hiding the logout semantics — the service decides).
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// HandleRegister creates a new account.
//
// HTTP: POST /auth/register
// BODY: {"fullName": "...", "email": "...", "password": "..."}
// 201 → public user fields; 409 if the email is taken; 400 on bad payload.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and opens a session.
//
// HTTP: POST /auth/login
// BODY: {"email": "...", "password": "..."}
// 200 → {id, fullName, email, token, expiresAt}; 401 on bad credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleLogout deletes the caller's session.
//
// HTTP: POST /auth/logout  (Authorization: Bearer <token>)
// 200 → {"message": "Logged out successfully"}; 401 for an unknown token.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)

	if err := h.authService.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
