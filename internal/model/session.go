package model

import "time"

// Session maps an opaque bearer token to a user with an expiry.
//
// OPAQUE TOKENS vs JWT:
// The token carries no embedded claims — it's a random UUID whose only meaning
// is the session row it points to. That means validation is a DB lookup, but it
// also means logout actually works: deleting the row revokes the token
// immediately, which a stateless signed token can't do.
//
// Expiry is enforced at READ time: a session whose ExpiresAt has passed is
// treated exactly as if the row didn't exist. Nothing depends on expired rows
// being physically deleted (the background sweeper only reclaims space).
type Session struct {
	Token     string    `json:"token"     db:"token"` // primary key, uuid v4
	UserID    string    `json:"userId"    db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
