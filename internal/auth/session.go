package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"newsdeck/internal/core"
)

// SessionStore persists the singleton current-session record and serves
// synchronous reads from an in-memory copy loaded at startup.
type SessionStore struct {
	db     *core.Database
	logger *core.Logger

	mu      sync.RWMutex
	current Session
}

// NewSessionStore creates a new session store
func NewSessionStore(db *core.Database, logger *core.Logger) *SessionStore {
	return &SessionStore{
		db:      db,
		logger:  logger,
		current: emptySession(),
	}
}

func emptySession() Session {
	return Session{UserID: AbsentUserID}
}

// Load reads the persisted session into memory. An absent row means
// signed-out.
func (s *SessionStore) Load(ctx context.Context) error {
	query := `
		SELECT user_id, first_name, last_name, email, is_logged_in
		FROM session
		WHERE id = 1
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var session Session
	err := s.db.QueryRowContext(ctx, query).Scan(
		&session.UserID,
		&session.FirstName,
		&session.LastName,
		&session.Email,
		&session.IsLoggedIn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	return nil
}

// Save persists a logged-in identity as the current session.
func (s *SessionStore) Save(ctx context.Context, user *User) error {
	query := `
		INSERT INTO session (id, user_id, first_name, last_name, email, is_logged_in)
		VALUES (1, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			is_logged_in = excluded.is_logged_in
	`

	_, err := s.db.ExecWithTimeout(ctx, query, user.ID, user.FirstName, user.LastName, user.Email)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = Session{
		UserID:     user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		IsLoggedIn: true,
	}
	s.mu.Unlock()

	return nil
}

// Clear wipes the persisted session unconditionally.
func (s *SessionStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecWithTimeout(ctx, `DELETE FROM session WHERE id = 1`)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = emptySession()
	s.mu.Unlock()

	return nil
}

// IsLoggedIn reports whether a user is currently logged in.
func (s *SessionStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsLoggedIn
}

// Current returns the logged-in user, or nil.
func (s *SessionStore) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User()
}
