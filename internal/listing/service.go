package listing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// DefaultMaxAttachments caps the number of images accepted per publish.
const DefaultMaxAttachments = 5

// ImageStore persists attachment payloads and returns servable paths.
type ImageStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(path string) error
}

// OwnerDirectory resolves owner identifiers to stored users.
type OwnerDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Attachment is a binary image submitted alongside a listing at publish
// time.
type Attachment struct {
	Filename string
	Data     io.Reader
}

// Fields carries the scalar publish input. Required numeric fields are
// pointers so an absent value is distinguishable from zero.
type Fields struct {
	Address          string
	PropertyType     string
	Bedrooms         *int64
	Bathrooms        *float64
	SquareFootage    *float64
	Description      string
	MonthlyRent      *float64
	IncomePercentage *float64
	AskingPrice      *float64
	LeaseTerms       string
	TermsAgreed      bool
}

// Service orchestrates the publish-a-listing use case: validate the
// owner and fields, store attachments, then write the listing and its
// image rows as one unit.
type Service struct {
	repo           *Repository
	store          ImageStore
	owners         OwnerDirectory
	maxAttachments int
}

// NewService creates a publication service.
func NewService(repo *Repository, store ImageStore, owners OwnerDirectory, maxAttachments int) *Service {
	if maxAttachments <= 0 {
		maxAttachments = DefaultMaxAttachments
	}
	return &Service{repo: repo, store: store, owners: owners, maxAttachments: maxAttachments}
}

// Publish validates and persists a new listing, returning its identifier.
// Validation failures surface before any I/O. If an attachment fails to
// store, or the repository write fails, already-stored files are removed
// and no listing is created.
func (s *Service) Publish(ctx context.Context, ownerID int64, fields Fields, attachments []Attachment) (int64, error) {
	if ownerID == 0 {
		return 0, ErrUnauthenticatedOwner
	}
	ok, err := s.owners.Exists(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("resolving owner %d: %w", ownerID, err)
	}
	if !ok {
		return 0, ErrUnauthenticatedOwner
	}

	if err := validateFields(fields); err != nil {
		return 0, err
	}

	if len(attachments) > s.maxAttachments {
		return 0, outOfRange("images", fmt.Sprintf("at most %d images allowed", s.maxAttachments))
	}

	paths, err := s.storeAttachments(ctx, attachments)
	if err != nil {
		return 0, err
	}

	l := &Listing{
		OwnerID:          ownerID,
		Address:          fields.Address,
		MonthlyRent:      *fields.MonthlyRent,
		IncomePercentage: *fields.IncomePercentage,
		AskingPrice:      *fields.AskingPrice,
		TermsAgreed:      fields.TermsAgreed,
		Bedrooms:         fields.Bedrooms,
		Bathrooms:        fields.Bathrooms,
		SquareFootage:    fields.SquareFootage,
	}
	if fields.PropertyType != "" {
		l.PropertyType = &fields.PropertyType
	}
	if fields.Description != "" {
		l.Description = &fields.Description
	}
	if fields.LeaseTerms != "" {
		l.LeaseTerms = &fields.LeaseTerms
	}

	id, err := s.repo.Create(ctx, l, paths)
	if err != nil {
		s.removeStored(paths)
		return 0, err
	}

	slog.Info("listing published", "listing_id", id, "owner_id", ownerID, "images", len(paths))
	return id, nil
}

// validateFields checks required fields in a fixed order so the first
// failure is deterministic: address, monthlyRent, incomePercentage,
// askingPrice, termsAgreed. Range checks follow presence checks.
func validateFields(f Fields) error {
	if f.Address == "" {
		return missingField("address")
	}
	if f.MonthlyRent == nil {
		return missingField("monthlyRent")
	}
	if f.IncomePercentage == nil {
		return missingField("incomePercentage")
	}
	if f.AskingPrice == nil {
		return missingField("askingPrice")
	}
	if !f.TermsAgreed {
		return missingField("termsAgreed")
	}

	if *f.IncomePercentage <= 0 || *f.IncomePercentage > 100 {
		return outOfRange("incomePercentage", "must be greater than 0 and at most 100")
	}
	if *f.MonthlyRent <= 0 {
		return outOfRange("monthlyRent", "must be positive")
	}
	if *f.AskingPrice <= 0 {
		return outOfRange("askingPrice", "must be positive")
	}
	if !ValidPropertyType(f.PropertyType) {
		return outOfRange("propertyType", "must be home, apartment, or townhouse")
	}
	if f.Bedrooms != nil && *f.Bedrooms < 0 {
		return outOfRange("bedrooms", "must not be negative")
	}
	if f.Bathrooms != nil && *f.Bathrooms < 0 {
		return outOfRange("bathrooms", "must not be negative")
	}
	if f.SquareFootage != nil && *f.SquareFootage <= 0 {
		return outOfRange("squareFootage", "must be positive")
	}

	return nil
}

// storeAttachments writes each attachment in submission order. On the
// first failure it removes everything stored so far and aborts.
func (s *Service) storeAttachments(ctx context.Context, attachments []Attachment) ([]string, error) {
	paths := make([]string, 0, len(attachments))
	for _, a := range attachments {
		p, err := s.store.Store(ctx, a.Filename, a.Data)
		if err != nil {
			s.removeStored(paths)
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// removeStored cleans up stored image files after a failed publish.
func (s *Service) removeStored(paths []string) {
	for _, p := range paths {
		if err := s.store.Remove(p); err != nil {
			slog.Warn("removing stored image after failed publish", "path", p, "error", err)
		}
	}
}
