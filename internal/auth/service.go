package auth

import (
	"context"
	"errors"
	"fmt"

	"newsdeck/internal/core"
)

// Service provides login, sign-up and session functionality
type Service struct {
	credentials *CredentialModel
	session     *SessionStore
	logger      *core.Logger
}

// NewService creates a new authentication service
func NewService(db *core.Database, logger *core.Logger) *Service {
	return &Service{
		credentials: NewCredentialModel(db, logger),
		session:     NewSessionStore(db, logger),
		logger:      logger,
	}
}

// Init loads the persisted session into memory.
func (s *Service) Init(ctx context.Context) error {
	return s.session.Load(ctx)
}

// Login authenticates a user and persists the identity as the current
// session. Validation runs before any storage I/O.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if isBlank(email) || isBlank(password) {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}

	if err := s.session.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// SignUp creates a credential record and logs the new user in.
func (s *Service) SignUp(ctx context.Context, firstName, lastName, email, password string) (*User, error) {
	if isBlank(firstName) || isBlank(lastName) || isBlank(email) {
		return nil, fmt.Errorf("%w: first name, last name and email are required", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	_, err := s.credentials.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	user := &User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}
	if err := s.credentials.Insert(ctx, user, password); err != nil {
		return nil, err
	}

	if err := s.session.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User signed up", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Logout clears the current session unconditionally.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}

	s.logger.Info("User logged out")
	return nil
}

// IsLoggedIn reports whether a user is currently logged in.
func (s *Service) IsLoggedIn() bool {
	return s.session.IsLoggedIn()
}

// CurrentUser returns the logged-in user, or nil.
func (s *Service) CurrentUser() *User {
	return s.session.Current()
}
