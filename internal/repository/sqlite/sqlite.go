// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the binary as a single
// file. No separate database server to install, configure, or manage. The
// whole relational schema of this app (users, sessions, vcards and three
// child tables) is six small tables with unique-key lookups and single-row
// writes, which is exactly what SQLite is good at.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite", so sql.Open("sqlite", ...) below works.
	_ "modernc.org/sqlite"
)

// DB owns the sql.DB connection pool and the schema. The per-entity repos
// (Users, Sessions, VCards) share the pool and implement the repository
// interfaces — separate types because Go does not allow two methods with the
// same name (Create here) on one receiver.
type DB struct {
	conn *sql.DB

	Users    *UserRepo
	Sessions *SessionRepo
	VCards   *VCardRepo
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect — Ping forces the first connection
	// so a bad path or permissions problem surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important when every HTTP request hits the database.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We rely on them:
	// sessions → users, vcards → users, child tables → vcards.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:     conn,
		Users:    &UserRepo{conn: conn},
		Sessions: &SessionRepo{conn: conn},
		VCards:   &VCardRepo{conn: conn},
	}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent —
// safe to run on every startup against an existing database.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			full_name     TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The token itself is the primary key — lookups on every authenticated
	// request go through it. expires_at is indexed for the sweeper's purge.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	// user_id UNIQUE is the one-vCard-per-user invariant, enforced at the
	// storage level in addition to the service's existence check.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS vcards (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL UNIQUE REFERENCES users(id),
			name         TEXT NOT NULL,
			job_title    TEXT NOT NULL DEFAULT '',
			company_name TEXT NOT NULL DEFAULT '',
			heading      TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			video_url    TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating vcards table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS contact_details (
			id         TEXT PRIMARY KEY,
			vcard_id   TEXT NOT NULL REFERENCES vcards(id),
			type       TEXT NOT NULL,
			value      TEXT NOT NULL,
			label      TEXT NOT NULL DEFAULT '',
			is_primary INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_contact_details_vcard_id ON contact_details(vcard_id);
	`)
	if err != nil {
		return fmt.Errorf("creating contact_details table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS social_links (
			id         TEXT PRIMARY KEY,
			vcard_id   TEXT NOT NULL REFERENCES vcards(id),
			platform   TEXT NOT NULL,
			url        TEXT NOT NULL,
			username   TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_social_links_vcard_id ON social_links(vcard_id);
	`)
	if err != nil {
		return fmt.Errorf("creating social_links table: %w", err)
	}

	// "position" because ORDER is an SQL keyword; JSON-side this is "order".
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS web_links (
			id         TEXT PRIMARY KEY,
			vcard_id   TEXT NOT NULL REFERENCES vcards(id),
			title      TEXT NOT NULL,
			url        TEXT NOT NULL,
			position   INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_web_links_vcard_id ON web_links(vcard_id);
	`)
	if err != nil {
		return fmt.Errorf("creating web_links table: %w", err)
	}

	return nil
}
