package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nowyouseeme1234/side-hustle/internal/auth"
	"github.com/nowyouseeme1234/side-hustle/internal/user"
)

// handleSignup registers a new password-based user and logs them in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		apiError(w, "username, email, and password are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		apiError(w, fmt.Sprintf("password must be at least %d characters long", auth.MinPasswordLength), http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apiError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	var phone *string
	if p := strings.TrimSpace(req.PhoneNumber); p != "" {
		phone = &p
	}

	u, err := s.users.Create(r.Context(), req.Username, req.Email, hash, phone)
	if errors.Is(err, user.ErrEmailTaken) || errors.Is(err, user.ErrUsernameTaken) {
		apiError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		apiError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	s.writeAuthResponse(w, u, "User registered successfully!", http.StatusCreated)
}

// handleLogin authenticates a password-based user.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, err := s.users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, user.ErrNotFound) {
		apiError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		apiError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	// Google-created accounts have no password.
	if u.PasswordHash == "" {
		apiError(w, "this account was created via Google, please log in with Google", http.StatusUnauthorized)
		return
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		apiError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	s.writeAuthResponse(w, u, "Login successful!", http.StatusOK)
}

// handleGoogleAuth signs a user in (or up) from a Google ID token,
// linking the Google identity to an existing account with the same email.
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.google == nil {
		apiError(w, "google sign-in not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		apiError(w, "google ID token is required", http.StatusBadRequest)
		return
	}

	identity, err := s.google.Verify(r.Context(), req.Token)
	if err != nil {
		apiError(w, "google authentication failed", http.StatusUnauthorized)
		return
	}

	u, err := s.users.GetByGoogleIDOrEmail(r.Context(), identity.Subject, identity.Email)
	switch {
	case err == nil:
		if u.GoogleID == "" {
			if err := s.users.LinkGoogleID(r.Context(), u.ID, identity.Subject); err != nil {
				apiError(w, "failed to login", http.StatusInternalServerError)
				return
			}
		}
		s.writeAuthResponse(w, u, "Login successful via Google!", http.StatusOK)
	case errors.Is(err, user.ErrNotFound):
		created, err := s.users.CreateFromGoogle(r.Context(), identity.Name, identity.Email, identity.Subject)
		if err != nil {
			apiError(w, "failed to create account", http.StatusInternalServerError)
			return
		}
		s.writeAuthResponse(w, created, "Account created and logged in via Google!", http.StatusCreated)
	default:
		apiError(w, "failed to login", http.StatusInternalServerError)
	}
}

// writeAuthResponse issues a session token and returns it with the user.
func (s *Server) writeAuthResponse(w http.ResponseWriter, u *user.User, message string, code int) {
	token, err := s.tokens.Issue(u.ID, u.Username, u.Email)
	if err != nil {
		apiError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	apiJSON(w, map[string]interface{}{
		"message": message,
		"userId":  u.ID,
		"user":    u,
		"token":   token,
	}, code)
}
