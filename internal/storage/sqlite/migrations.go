package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Groups are stored as whole JSON documents; the version column guards concurrent writers.
const schema = `
CREATE TABLE IF NOT EXISTS group_documents (
    id TEXT PRIMARY KEY,
    version INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trust_scores (
    user_id TEXT PRIMARY KEY,
    score REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
