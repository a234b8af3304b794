// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash AND NOT Password?
// We never store (or even hold onto) the plaintext password. The auth service
// bcrypt-hashes it at registration and only the hash is persisted. The field
// has `json:"-"` so it can NEVER leak into an API response — encoding/json
// skips it entirely, no matter which handler serializes a User.
type User struct {
	ID           string    `json:"id"        db:"id"`
	FullName     string    `json:"fullName"  db:"full_name"`
	Email        string    `json:"email"     db:"email"` // unique — one account per address
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the externally visible projection of a User — the subset of
// fields returned from /auth/register and embedded in the complete vCard view.
type PublicUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the safe-to-serialize projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
