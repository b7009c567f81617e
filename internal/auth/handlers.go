package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsdeck/internal/core"
)

// Handler provides authentication HTTP handlers
type Handler struct {
	service *Service
	logger  *core.Logger
}

// NewHandler creates a new authentication handler
func NewHandler(service *Service, logger *core.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest represents a sign-up request
type SignUpRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// SessionResponse represents the current session for API consumers
type SessionResponse struct {
	User       *User `json:"user"`
	IsLoggedIn bool  `json:"is_logged_in"`
}

// LoginHandler handles user login
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteErrorResponse(w, http.StatusBadRequest, core.NewValidationError("Invalid request body", err))
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{User: user, IsLoggedIn: true})
}

// SignUpHandler handles user sign-up
func (h *Handler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteErrorResponse(w, http.StatusBadRequest, core.NewValidationError("Invalid request body", err))
		return
	}

	user, err := h.service.SignUp(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{User: user, IsLoggedIn: true})
}

// LogoutHandler clears the current session
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		h.logger.Error("Logout failed", "error", err)
		core.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MeHandler returns the current session state
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{
		User:       h.service.CurrentUser(),
		IsLoggedIn: h.service.IsLoggedIn(),
	})
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		core.WriteErrorResponse(w, http.StatusBadRequest, core.NewValidationError(err.Error(), err))
	case errors.Is(err, ErrInvalidCredentials):
		core.WriteErrorResponse(w, http.StatusUnauthorized, core.NewUnauthorizedError("Invalid email or password", err))
	case errors.Is(err, ErrDuplicateEmail):
		core.WriteErrorResponse(w, http.StatusConflict, core.NewDuplicateEmailError("Email already exists", err))
	default:
		h.logger.Error("Authentication error", "error", err)
		core.WriteErrorResponse(w, http.StatusInternalServerError, core.NewInternalError("Authentication failed", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
