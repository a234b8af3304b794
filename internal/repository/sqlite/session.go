package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/vcard-backend/internal/apperror"
	"github.com/sakif/vcard-backend/internal/model"
	"github.com/sakif/vcard-backend/internal/repository"
)

// SessionRepo persists bearer-token sessions against the shared pool.
type SessionRepo struct {
	conn *sql.DB
}

// compile-time check that *SessionRepo implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionRepo)(nil)

// Create inserts a new session row. The caller (AuthService) has already
// generated the token and expiry — unlike the other entities, no ID is
// generated here because the token IS the primary key.
func (r *SessionRepo) Create(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		session.Token,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}

	return nil
}

// GetByToken retrieves a session by its token, expired or not.
// Expiry is a business rule — the service layer applies it.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session

	err := r.conn.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at
		 FROM sessions WHERE token = ?`,
		token,
	).Scan(
		&s.Token,
		&s.UserID,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Session")
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &s, nil
}

// Delete removes a session (logout). RowsAffected tells us whether the token
// ever pointed at a session — zero rows means it didn't.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`,
		token,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Session")
	}

	return nil
}

// DeleteExpired purges all sessions whose expiry is before the given instant.
// Only the background sweeper calls this; token validation never depends on it.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
