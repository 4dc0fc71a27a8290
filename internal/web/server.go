// Package web provides the HTTP server and handlers for the side-hustle
// marketplace API.
package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nowyouseeme1234/side-hustle/internal/auth"
	"github.com/nowyouseeme1234/side-hustle/internal/config"
	"github.com/nowyouseeme1234/side-hustle/internal/imagestore"
	"github.com/nowyouseeme1234/side-hustle/internal/listing"
	"github.com/nowyouseeme1234/side-hustle/internal/logging"
	"github.com/nowyouseeme1234/side-hustle/internal/user"
)

// Server is the marketplace HTTP server.
type Server struct {
	cfg      config.Config
	users    *user.Store
	listings *listing.Repository
	service  *listing.Service
	images   *imagestore.Store
	tokens   *auth.TokenManager
	google   auth.GoogleVerifier
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a web server with the given database and config.
func NewServer(db *sql.DB, cfg config.Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required (set SH_JWT_SECRET)")
	}

	images, err := imagestore.New(cfg.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("creating image store: %w", err)
	}

	users := user.NewStore(db)
	listings := listing.NewRepository(db)

	s := &Server{
		cfg:      cfg,
		users:    users,
		listings: listings,
		service:  listing.NewService(listings, images, users, cfg.MaxAttachments),
		images:   images,
		tokens:   auth.NewTokenManager(cfg.JWTSecret),
		mux:      http.NewServeMux(),
	}
	if cfg.GoogleClientID != "" {
		s.google = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(images.Dir()))))
	s.mux.Handle("/createlisting", auth.RequireUser(s.tokens, http.HandlerFunc(s.handleCreateListing)))
	s.mux.HandleFunc("/getlistings", s.handleGetListings)
	s.mux.HandleFunc("/propertydetails/", s.handlePropertyDetails)
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/google", s.handleGoogleAuth)
	s.mux.HandleFunc("/api/pricing/estimate", s.handlePricingEstimate)
	s.mux.HandleFunc("/health", s.handleHealth)

	s.handler = logging.RequestLogger(withTimeout(cfg.RequestTimeout, s.mux))

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("starting server", "port", port)
	return srv.ListenAndServe()
}

// withTimeout bounds each request with a context deadline.
func withTimeout(d time.Duration, next http.Handler) http.Handler {
	if d <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// writeListingError maps domain errors onto HTTP responses.
func writeListingError(w http.ResponseWriter, err error) {
	var ve *listing.ValidationError
	var se *imagestore.StorageError
	switch {
	case errors.Is(err, listing.ErrUnauthenticatedOwner):
		apiError(w, "owner not authenticated", http.StatusUnauthorized)
	case errors.As(err, &ve):
		apiError(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, listing.ErrNotFound):
		apiError(w, "listing not found", http.StatusNotFound)
	case errors.As(err, &se):
		apiError(w, "failed to store images", http.StatusInternalServerError)
	default:
		apiError(w, "failed to create listing", http.StatusInternalServerError)
	}
}
