package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"newsdeck/internal/core"
)

// CredentialModel handles database operations for user credentials.
//
// Passwords are compared as stored, with no hashing. That replicates the
// source system's behavior; see DESIGN.md for the recorded gap.
type CredentialModel struct {
	db     *core.Database
	logger *core.Logger
}

// NewCredentialModel creates a new credential model
func NewCredentialModel(db *core.Database, logger *core.Logger) *CredentialModel {
	return &CredentialModel{
		db:     db,
		logger: logger,
	}
}

// Insert creates a new credential record and fills in the user's id
func (m *CredentialModel) Insert(ctx context.Context, user *User, password string) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, query, user.FirstName, user.LastName, user.Email, password).Scan(&user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

// GetByEmail retrieves a user by email
func (m *CredentialModel) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user User
	err := m.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}

// Authenticate retrieves a user by exact email and password match
func (m *CredentialModel) Authenticate(ctx context.Context, email, password string) (*User, error) {
	query := `
		SELECT id, first_name, last_name, email
		FROM users
		WHERE email = ? AND password = ?
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user User
	err := m.db.QueryRowContext(ctx, query, email, password).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}
