// Package user provides the user account model and data access.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("user with that email already exists")
	ErrUsernameTaken = errors.New("username is already taken")
)

// User represents a marketplace account. At least one of PasswordHash or
// GoogleID is always set.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	PhoneNumber  *string   `json:"phone_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store manages users in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `id, username, email, password_hash, google_id, phone_number, created_at`

// Create adds a password-based user. Email is stored lowercased.
func (s *Store) Create(ctx context.Context, username, email, passwordHash string, phone *string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, phone_number) VALUES (?, ?, ?, ?)",
		username, email, passwordHash, phone,
	)
	if err != nil {
		return nil, mapUniqueError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// CreateFromGoogle adds a federated user without a password. If the
// desired username is taken, a random numeric suffix is appended.
func (s *Store) CreateFromGoogle(ctx context.Context, username, email, googleID string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	name := username
	for attempt := 0; attempt < 5; attempt++ {
		result, err := s.db.ExecContext(ctx,
			"INSERT INTO users (username, email, google_id) VALUES (?, ?, ?)",
			name, email, googleID,
		)
		if err != nil {
			mapped := mapUniqueError(err)
			if errors.Is(mapped, ErrUsernameTaken) {
				name = fmt.Sprintf("%s_%d", username, rand.Intn(10000))
				continue
			}
			return nil, mapped
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("getting user id: %w", err)
		}
		return s.GetByID(ctx, id)
	}

	return nil, fmt.Errorf("could not find a free username for %q", username)
}

// GetByID returns a user by id.
func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = ?", selectColumns), id)
	return scanUser(row)
}

// GetByUsername returns a user by username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE username = ?", selectColumns), username)
	return scanUser(row)
}

// GetByGoogleIDOrEmail returns the user matching either key, preferring
// the google id match. Used to link federated logins to existing
// accounts that signed up with the same email.
func (s *Store) GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE google_id = ? OR email = ? ORDER BY google_id = ? DESC LIMIT 1", selectColumns),
		googleID, strings.ToLower(email), googleID)
	return scanUser(row)
}

// LinkGoogleID attaches a google subject id to an existing account.
func (s *Store) LinkGoogleID(ctx context.Context, id int64, googleID string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET google_id = ? WHERE id = ?", googleID, id)
	if err != nil {
		return fmt.Errorf("linking google id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether a user with the given id is stored.
func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking user %d: %w", id, err)
	}
	return count > 0, nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var passwordHash, googleID, phone sql.NullString

	err := row.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &googleID, &phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.PasswordHash = passwordHash.String
	u.GoogleID = googleID.String
	if phone.Valid {
		u.PhoneNumber = &phone.String
	}

	return &u, nil
}

// mapUniqueError turns SQLite unique violations into domain errors.
func mapUniqueError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	default:
		return fmt.Errorf("inserting user: %w", err)
	}
}
