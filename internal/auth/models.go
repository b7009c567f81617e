package auth

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)

// AbsentUserID marks a session with no user.
const AbsentUserID = -1

// MinPasswordLength is checked before any storage I/O on sign-up.
const MinPasswordLength = 6

// User represents a signed-up reader identity
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Session is the persisted current-session blob: who is logged in, if anyone.
type Session struct {
	UserID     int    `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// User returns the session's identity, or nil unless all four identity
// fields are present.
func (s Session) User() *User {
	if s.UserID == AbsentUserID || s.FirstName == "" || s.LastName == "" || s.Email == "" {
		return nil
	}
	return &User{
		ID:        s.UserID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
