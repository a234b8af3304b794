package auth

import "github.com/google/uuid"

// NewSessionToken generates an opaque session token.
//
// The token is a random UUID v4 — 122 bits of randomness, no embedded claims.
// Its only meaning is the session row it keys in the database, which is what
// makes server-side revocation (logout) possible: delete the row and the
// token is dead, immediately.
//
// uuid.NewString reads crypto/rand under the hood, so tokens are not
// guessable or enumerable.
func NewSessionToken() string {
	return uuid.NewString()
}
