package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Foreign keys are enforced (see configure), so listing_images rows
// cannot outlive their listing and listings cannot reference a missing user.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT    NOT NULL UNIQUE,
		email         TEXT    NOT NULL UNIQUE,
		password_hash TEXT,
		google_id     TEXT    UNIQUE,
		phone_number  TEXT,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id          INTEGER NOT NULL REFERENCES users(id),
		address           TEXT    NOT NULL,
		property_type     TEXT,
		bedrooms          INTEGER CHECK (bedrooms IS NULL OR bedrooms >= 0),
		bathrooms         REAL    CHECK (bathrooms IS NULL OR bathrooms >= 0),
		square_footage    REAL    CHECK (square_footage IS NULL OR square_footage > 0),
		description       TEXT,
		monthly_rent      REAL    NOT NULL CHECK (monthly_rent > 0),
		income_percentage REAL    NOT NULL CHECK (income_percentage > 0 AND income_percentage <= 100),
		asking_price      REAL    NOT NULL CHECK (asking_price > 0),
		lease_terms       TEXT,
		terms_agreed      INTEGER NOT NULL DEFAULT 0,
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listing_images (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		image_url  TEXT    NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listing_images_listing_id ON listing_images(listing_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
