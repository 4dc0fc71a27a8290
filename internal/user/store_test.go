package user

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nowyouseeme1234/side-hustle/internal/db"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})
	return NewStore(d)
}

func TestCreateAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	phone := "555-0100"
	u, err := s.Create(ctx, "alice", "Alice@Example.com", "hash123", &phone)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero id")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.PhoneNumber == nil || *u.PhoneNumber != phone {
		t.Errorf("phone = %v, want %q", u.PhoneNumber, phone)
	}

	got, err := s.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.PasswordHash != "hash123" {
		t.Errorf("password hash = %q, want %q", got.PasswordHash, "hash123")
	}
}

func TestCreateDuplicates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "bob", "bob@example.com", "h", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := s.Create(ctx, "bob2", "bob@example.com", "h", nil)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: err = %v, want ErrEmailTaken", err)
	}

	_, err = s.Create(ctx, "bob", "other@example.com", "h", nil)
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: err = %v, want ErrUsernameTaken", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.GetByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get by id: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get by username: err = %v, want ErrNotFound", err)
	}
}

func TestCreateFromGoogle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, err := s.CreateFromGoogle(ctx, "Carol Smith", "carol@example.com", "google-sub-1")
	if err != nil {
		t.Fatalf("create from google: %v", err)
	}
	if u.GoogleID != "google-sub-1" {
		t.Errorf("google id = %q", u.GoogleID)
	}
	if u.PasswordHash != "" {
		t.Errorf("expected no password hash, got %q", u.PasswordHash)
	}
}

func TestCreateFromGoogleUsernameCollision(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "dave", "dave@example.com", "h", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := s.CreateFromGoogle(ctx, "dave", "dave2@example.com", "google-sub-2")
	if err != nil {
		t.Fatalf("create from google: %v", err)
	}
	if u.Username == "dave" {
		t.Error("expected a uniquified username")
	}
	if !strings.HasPrefix(u.Username, "dave_") {
		t.Errorf("username = %q, want dave_<n>", u.Username)
	}
}

func TestGetByGoogleIDOrEmailPrefersGoogleID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "erin", "erin@example.com", "h", nil); err != nil {
		t.Fatalf("create erin: %v", err)
	}
	g, err := s.CreateFromGoogle(ctx, "frank", "frank@example.com", "google-sub-3")
	if err != nil {
		t.Fatalf("create frank: %v", err)
	}

	got, err := s.GetByGoogleIDOrEmail(ctx, "google-sub-3", "erin@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != g.ID {
		t.Errorf("got user %d, want google match %d", got.ID, g.ID)
	}
}

func TestLinkGoogleID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, "grace", "grace@example.com", "h", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.LinkGoogleID(ctx, u.ID, "google-sub-4"); err != nil {
		t.Fatalf("link: %v", err)
	}

	got, err := s.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GoogleID != "google-sub-4" {
		t.Errorf("google id = %q, want linked", got.GoogleID)
	}

	if err := s.LinkGoogleID(ctx, 9999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("link missing user: err = %v, want ErrNotFound", err)
	}
}

func TestExists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, "henry", "henry@example.com", "h", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := s.Exists(ctx, u.ID)
	if err != nil || !ok {
		t.Errorf("exists(%d) = %v, %v; want true", u.ID, ok, err)
	}

	ok, err = s.Exists(ctx, 9999)
	if err != nil || ok {
		t.Errorf("exists(9999) = %v, %v; want false", ok, err)
	}
}
