package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/vcard-backend/internal/model"
)

// newTestDB opens an in-memory database with the full schema migrated.
// Each test gets its own database, so tests stay independent and parallel-safe.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func seedableUser(email string) *model.User {
	return &model.User{
		FullName:     "Jane Doe",
		Email:        email,
		PasswordHash: "$2a$04$notarealhashbutlookslikeone",
	}
}

func seedUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()

	user := seedableUser(email)
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return user
}

func seedVCard(t *testing.T, db *DB, userID string) *model.VCard {
	t.Helper()

	card := &model.VCard{
		UserID: userID,
		Name:   "Jane Doe",
	}
	if err := db.VCards.CreateVCard(context.Background(), card); err != nil {
		t.Fatalf("seeding vcard for user %s: %v", userID, err)
	}
	return card
}
