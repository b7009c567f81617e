package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"newsdeck/internal/core"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) (*core.Database, *core.Logger) {
	t.Helper()

	logger := core.NewLoggerWith(slog.New(slog.NewTextHandler(io.Discard, nil)))
	db, err := core.OpenDatabase(":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			user_id INTEGER NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			is_logged_in BOOLEAN NOT NULL DEFAULT 0
		);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	return db, logger
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, logger := newTestDB(t)
	service := NewService(db, logger)
	if err := service.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init service: %v", err)
	}
	return service
}

func TestSignUpLogsUserIn(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	user, err := service.SignUp(ctx, "Ada", "Lovelace", "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}
	if user.ID <= 0 {
		t.Errorf("Expected a positive user id, got %d", user.ID)
	}

	if !service.IsLoggedIn() {
		t.Error("Expected sign-up to log the user in")
	}
	current := service.CurrentUser()
	if current == nil || current.Email != "ada@example.com" || current.FirstName != "Ada" {
		t.Errorf("Unexpected current user: %+v", current)
	}
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		email     string
		password  string
	}{
		{"blank first name", " ", "Lovelace", "ada@example.com", "secret123"},
		{"blank last name", "Ada", "", "ada@example.com", "secret123"},
		{"blank email", "Ada", "Lovelace", "", "secret123"},
		{"short password", "Ada", "Lovelace", "ada@example.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t)

			_, err := service.SignUp(context.Background(), tt.firstName, tt.lastName, tt.email, tt.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if service.IsLoggedIn() {
				t.Error("Expected failed sign-up to leave the session signed out")
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.SignUp(ctx, "Ada", "Lovelace", "ada@example.com", "secret123"); err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}

	_, err := service.SignUp(ctx, "Other", "Person", "ada@example.com", "different456")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLoginWithWrongCredentials(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.SignUp(ctx, "Ada", "Lovelace", "ada@example.com", "secret123"); err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}
	if err := service.Logout(ctx); err != nil {
		t.Fatalf("Failed to log out: %v", err)
	}

	_, err := service.Login(ctx, "ada@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, err = service.Login(ctx, "nobody@example.com", "secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	if service.IsLoggedIn() {
		t.Error("Expected failed logins to leave the session signed out")
	}
}

func TestLoginValidation(t *testing.T) {
	service := newTestService(t)

	_, err := service.Login(context.Background(), "", "secret123")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for blank email, got %v", err)
	}
	_, err = service.Login(context.Background(), "ada@example.com", "  ")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for blank password, got %v", err)
	}
}

func TestLoginAfterLogout(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.SignUp(ctx, "Ada", "Lovelace", "ada@example.com", "secret123"); err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}
	if err := service.Logout(ctx); err != nil {
		t.Fatalf("Failed to log out: %v", err)
	}
	if service.IsLoggedIn() {
		t.Fatal("Expected logout to sign the user out")
	}
	if service.CurrentUser() != nil {
		t.Fatal("Expected no current user after logout")
	}

	user, err := service.Login(ctx, "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("Failed to log back in: %v", err)
	}
	if user.FirstName != "Ada" || user.LastName != "Lovelace" {
		t.Errorf("Unexpected user identity: %+v", user)
	}
	if !service.IsLoggedIn() {
		t.Error("Expected login to restore the session")
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	service := newTestService(t)

	// Logging out while signed out is a no-op, not an error.
	if err := service.Logout(context.Background()); err != nil {
		t.Errorf("Expected logout without a session to succeed, got %v", err)
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	db, logger := newTestDB(t)
	ctx := context.Background()

	service := NewService(db, logger)
	if err := service.Init(ctx); err != nil {
		t.Fatalf("Failed to init service: %v", err)
	}
	if _, err := service.SignUp(ctx, "Ada", "Lovelace", "ada@example.com", "secret123"); err != nil {
		t.Fatalf("Failed to sign up: %v", err)
	}

	// A fresh service over the same database stands in for a process restart.
	restarted := NewService(db, logger)
	if err := restarted.Init(ctx); err != nil {
		t.Fatalf("Failed to init restarted service: %v", err)
	}

	if !restarted.IsLoggedIn() {
		t.Fatal("Expected the persisted session to survive a restart")
	}
	current := restarted.CurrentUser()
	if current == nil || current.Email != "ada@example.com" {
		t.Errorf("Unexpected restored user: %+v", current)
	}
}

func TestCurrentUserNilWhenSignedOut(t *testing.T) {
	service := newTestService(t)

	if service.IsLoggedIn() {
		t.Error("Expected a fresh service to be signed out")
	}
	if service.CurrentUser() != nil {
		t.Error("Expected no current user on a fresh service")
	}
}
