package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/nowyouseeme1234/side-hustle/internal/db"
)

func testDB(t *testing.T) *sql.DB {
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
	return d
}

func insertTestUser(t *testing.T, d *sql.DB, username string) int64 {
	t.Helper()
	result, err := d.Exec(
		"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
		username, username+"@example.com", "hash",
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	return id
}

func f64(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }

func testListing(ownerID int64) *Listing {
	return &Listing{
		OwnerID:          ownerID,
		Address:          "12 Main St",
		MonthlyRent:      10000,
		IncomePercentage: 20,
		AskingPrice:      168000,
		TermsAgreed:      true,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)
	ctx := context.Background()
	owner := insertTestUser(t, d, "alice")

	l := testListing(owner)
	l.Bathrooms = f64(1.5)
	l.Bedrooms = i64(3)
	paths := []string{"/uploads/a.jpg", "/uploads/b.jpg", "/uploads/c.jpg"}

	id, err := repo.Create(ctx, l, paths)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Address != "12 Main St" {
		t.Errorf("address = %q", got.Address)
	}
	if got.AskingPrice != 168000 {
		t.Errorf("asking price = %v, want 168000", got.AskingPrice)
	}
	if got.OwnerName != "alice" {
		t.Errorf("owner name = %q, want alice", got.OwnerName)
	}
	if len(got.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(got.Images))
	}
	for i, want := range paths {
		if got.Images[i] != want {
			t.Errorf("images[%d] = %q, want %q", i, got.Images[i], want)
		}
	}
	// Fractional bathrooms are stored untouched; flooring is display-only.
	if got.Bathrooms == nil || *got.Bathrooms != 1.5 {
		t.Errorf("bathrooms = %v, want 1.5", got.Bathrooms)
	}
	if got.DisplayBathrooms() != 1 {
		t.Errorf("display bathrooms = %d, want 1", got.DisplayBathrooms())
	}
}

func TestCreateWithoutImages(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)
	ctx := context.Background()
	owner := insertTestUser(t, d, "bob")

	id, err := repo.Create(ctx, testListing(owner), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Images == nil {
		t.Fatal("images must be an empty slice, not nil")
	}
	if len(got.Images) != 0 {
		t.Errorf("got %d images, want 0", len(got.Images))
	}
}

func TestCreateRollsBackOnImageFailure(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)
	ctx := context.Background()
	owner := insertTestUser(t, d, "carol")

	// The duplicate path violates the unique constraint on the second
	// image insert, which must roll back the listing row as well.
	paths := []string{"/uploads/dup.jpg", "/uploads/dup.jpg"}
	_, err := repo.Create(ctx, testListing(owner), paths)
	if err == nil {
		t.Fatal("expected error for duplicate image path")
	}
	var re *RepositoryError
	if !errors.As(err, &re) {
		t.Errorf("error = %T, want *RepositoryError", err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("got %d listings after failed create, want 0", len(all))
	}

	var imageCount int
	if err := d.QueryRow("SELECT COUNT(*) FROM listing_images").Scan(&imageCount); err != nil {
		t.Fatalf("count images: %v", err)
	}
	if imageCount != 0 {
		t.Errorf("got %d orphaned image rows, want 0", imageCount)
	}
}

func TestCreateRequiresOwner(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)

	_, err := repo.Create(context.Background(), testListing(0), nil)
	if !errors.Is(err, ErrUnauthenticatedOwner) {
		t.Errorf("err = %v, want ErrUnauthenticatedOwner", err)
	}
}

func TestCreateUnknownOwnerViolatesForeignKey(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)

	_, err := repo.Create(context.Background(), testListing(999), nil)
	if err == nil {
		t.Fatal("expected foreign key error for unknown owner")
	}
}

func TestListAllEmpty(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)

	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if len(all) != 0 {
		t.Errorf("got %d listings, want 0", len(all))
	}
}

func TestListAllMergesImagesPerListing(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)
	ctx := context.Background()
	owner := insertTestUser(t, d, "dave")

	ids := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		l := testListing(owner)
		l.Address = fmt.Sprintf("%d Elm St", i)
		var paths []string
		for j := 0; j < i; j++ {
			paths = append(paths, fmt.Sprintf("/uploads/l%d-img%d.jpg", i, j))
		}
		id, err := repo.Create(ctx, l, paths)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d listings, want 3", len(all))
	}
	for i, l := range all {
		if l.ID != ids[i] {
			t.Errorf("listing %d: id = %d, want %d (ordered by id)", i, l.ID, ids[i])
		}
		if len(l.Images) != i {
			t.Errorf("listing %d: got %d images, want %d", i, len(l.Images), i)
		}
		if l.OwnerName != "dave" {
			t.Errorf("listing %d: owner name = %q", i, l.OwnerName)
		}
	}
}

func TestGetByIDNotFound(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)

	_, err := repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetByIDIncludesOwnerPhone(t *testing.T) {
	d := testDB(t)
	repo := NewRepository(d)
	ctx := context.Background()

	result, err := d.Exec(
		"INSERT INTO users (username, email, password_hash, phone_number) VALUES (?, ?, ?, ?)",
		"erin", "erin@example.com", "hash", "555-0101",
	)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	owner, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}

	id, err := repo.Create(ctx, testListing(owner), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerPhone == nil || *got.OwnerPhone != "555-0101" {
		t.Errorf("owner phone = %v, want 555-0101", got.OwnerPhone)
	}
}
