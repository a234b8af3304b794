// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and DTO structs, never *http.Request, and return
// domain errors from internal/apperror, never HTTP status codes. The handler
// package does both translations. Services receive repository INTERFACES, so
// tests inject in-memory mocks instead of SQLite.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/sakif/vcard-backend/internal/apperror"
	"github.com/sakif/vcard-backend/internal/auth"
	"github.com/sakif/vcard-backend/internal/model"
	"github.com/sakif/vcard-backend/internal/repository"
)

// Validation bounds for registration payloads.
const (
	MinFullNameLength = 2
	MaxFullNameLength = 100
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt input limit
)

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AuthService handles registration, login/logout, and bearer-token resolution.
//
// It is both the "identity resolver" (token → user id, via ValidateToken) and
// the session lifecycle owner (insert on login, delete on logout). Expiry is
// enforced here at read time: an expired session row is indistinguishable
// from a missing one as far as callers can tell.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	passwords  *auth.PasswordService
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// A sessionTTL of zero falls back to DefaultSessionTTL (7 days).
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	passwords *auth.PasswordService,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		passwords:  passwords,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// LoginResult is returned by Login: the user's public identity plus the
// freshly issued bearer token and its expiry, bundled so the handler can
// respond in one step.
type LoginResult struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates a new user account.
//
// Fails with Conflict if the email is already registered. The plaintext
// password is bcrypt-hashed before anything is stored; the returned
// projection never includes the hash.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*model.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(strings.ToLower(email))

	if len(fullName) < MinFullNameLength || len(fullName) > MaxFullNameLength {
		return nil, apperror.ValidationFailed("fullName",
			fmt.Sprintf("full name must be between %d and %d characters", MinFullNameLength, MaxFullNameLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength))
	}

	// Duplicate check first — the UNIQUE constraint on email backs this up
	// if two registrations race, but the normal path reports a clean Conflict.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict("Email already registered")
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	public := user.Public()
	return &public, nil
}

// Login verifies credentials and opens a new session.
//
// SAME ERROR FOR BOTH FAILURE MODES:
// An unknown email and a wrong password both come back as "Invalid
// credentials" — distinguishing them would let an attacker probe which
// addresses have accounts.
//
// Each login creates an independent session, so the same user can be logged
// in from several devices, each session expiring on its own clock.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Unauthenticated("Invalid credentials")
		}
		return nil, fmt.Errorf("service/auth: fetching user by email: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("Invalid credentials")
	}

	session := &model.Session{
		Token:     auth.NewSessionToken(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error("failed to create session",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: creating session: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// ValidateToken resolves a bearer token to the user ID it authenticates.
//
// A token is rejected when the session row is missing OR its expiry has
// passed — the expired row is NOT deleted here (no side effects on reads;
// the background sweeper reclaims the space eventually).
//
// This method satisfies auth.TokenValidator, which is what the RequireAuth
// middleware consumes.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperror.Unauthenticated("Invalid or expired token")
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.Unauthenticated("Invalid or expired token")
		}
		return "", fmt.Errorf("service/auth: fetching session: %w", err)
	}

	if session.Expired(time.Now()) {
		return "", apperror.Unauthenticated("Invalid or expired token")
	}

	return session.UserID, nil
}

// GetUserByID returns the user for the given internal ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout deletes the session for the given token.
//
// A token that doesn't map to a session (never issued, or already logged out)
// reports Unauthenticated — from the client's perspective it was not a valid
// credential either way.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperror.Unauthenticated("Invalid or expired token")
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.Unauthenticated("Invalid or expired token")
		}
		return fmt.Errorf("service/auth: deleting session: %w", err)
	}

	s.logger.Info("user logged out")
	return nil
}
