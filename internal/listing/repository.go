package listing

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository provides create and read operations for listings and their
// image associations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a listing repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertListingSQL = `INSERT INTO listings
	(owner_id, address, property_type, bedrooms, bathrooms, square_footage, description, monthly_rent, income_percentage, asking_price, lease_terms, terms_agreed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertImageSQL = `INSERT INTO listing_images (listing_id, image_url) VALUES (?, ?)`

// selectColumns is shared by both read queries. The image aggregate keeps
// insertion order so attachments come back as they were submitted.
const selectColumns = `l.id, l.owner_id, l.address, l.property_type, l.bedrooms, l.bathrooms, l.square_footage,
	l.description, l.monthly_rent, l.income_percentage, l.asking_price, l.lease_terms, l.terms_agreed, l.created_at,
	GROUP_CONCAT(li.image_url ORDER BY li.id) AS images`

// Create inserts a listing row and one image row per stored path as a
// single transaction. A failure on any statement rolls the whole unit
// back; no listing is ever visible with a partial image set.
func (r *Repository) Create(ctx context.Context, l *Listing, imagePaths []string) (int64, error) {
	if l.OwnerID == 0 {
		return 0, ErrUnauthenticatedOwner
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &RepositoryError{Op: "beginning transaction", Err: err}
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	result, err := tx.ExecContext(ctx, insertListingSQL,
		l.OwnerID, l.Address, l.PropertyType,
		l.Bedrooms, l.Bathrooms, l.SquareFootage, l.Description,
		l.MonthlyRent, l.IncomePercentage, l.AskingPrice,
		l.LeaseTerms, l.TermsAgreed,
	)
	if err != nil {
		return 0, &RepositoryError{Op: "inserting listing", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, &RepositoryError{Op: "getting insert id", Err: err}
	}

	for _, path := range imagePaths {
		if _, err := tx.ExecContext(ctx, insertImageSQL, id, path); err != nil {
			return 0, &RepositoryError{Op: fmt.Sprintf("inserting image %s", path), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &RepositoryError{Op: "committing listing", Err: err}
	}

	return id, nil
}

// ListAll returns all listings with their images and owner names merged,
// one denormalized row per listing, oldest first. An empty store yields
// an empty slice.
func (r *Repository) ListAll(ctx context.Context) ([]*Listing, error) {
	query := fmt.Sprintf(`SELECT %s, u.username
		FROM listings l
		LEFT JOIN listing_images li ON l.id = li.listing_id
		LEFT JOIN users u ON l.owner_id = u.id
		GROUP BY l.id
		ORDER BY l.id`, selectColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &RepositoryError{Op: "listing listings", Err: err}
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	listings := make([]*Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows, false)
		if err != nil {
			return nil, &RepositoryError{Op: "scanning listing", Err: err}
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "iterating listings", Err: err}
	}

	return listings, nil
}

// GetByID returns one denormalized listing row, or ErrNotFound. The query
// requires the owning user to exist: a listing whose owner record was
// deleted is unreachable through this path.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Listing, error) {
	query := fmt.Sprintf(`SELECT %s, u.username, u.phone_number
		FROM listings l
		LEFT JOIN listing_images li ON l.id = li.listing_id
		JOIN users u ON l.owner_id = u.id
		WHERE l.id = ?
		GROUP BY l.id`, selectColumns)

	row := r.db.QueryRowContext(ctx, query, id)

	l, err := scanListing(row, true)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &RepositoryError{Op: fmt.Sprintf("querying listing %d", id), Err: err}
	}

	return l, nil
}

// scanListing scans a denormalized listing from a join row. withPhone is
// set for the detail query, which also selects the owner's phone number.
func scanListing(row interface{ Scan(...interface{}) error }, withPhone bool) (*Listing, error) {
	var l Listing
	var propertyType, description, leaseTerms sql.NullString
	var bedrooms sql.NullInt64
	var bathrooms, squareFootage sql.NullFloat64
	var images, username, phone sql.NullString

	dest := []interface{}{
		&l.ID, &l.OwnerID, &l.Address, &propertyType,
		&bedrooms, &bathrooms, &squareFootage, &description,
		&l.MonthlyRent, &l.IncomePercentage, &l.AskingPrice,
		&leaseTerms, &l.TermsAgreed, &l.CreatedAt,
		&images, &username,
	}
	if withPhone {
		dest = append(dest, &phone)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if propertyType.Valid {
		l.PropertyType = &propertyType.String
	}
	if bedrooms.Valid {
		l.Bedrooms = &bedrooms.Int64
	}
	if bathrooms.Valid {
		l.Bathrooms = &bathrooms.Float64
	}
	if squareFootage.Valid {
		l.SquareFootage = &squareFootage.Float64
	}
	if description.Valid {
		l.Description = &description.String
	}
	if leaseTerms.Valid {
		l.LeaseTerms = &leaseTerms.String
	}
	if phone.Valid {
		l.OwnerPhone = &phone.String
	}
	l.Images = splitImageList(images)
	l.OwnerName = ownerName(username)

	return &l, nil
}
