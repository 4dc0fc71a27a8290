package web

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/nowyouseeme1234/side-hustle/internal/auth"
	"github.com/nowyouseeme1234/side-hustle/internal/listing"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger file parts spill to temp files.
const maxMultipartMemory = 32 << 20

// handleCreateListing publishes a new listing from a multipart form.
// Scalar fields arrive as form values; images arrive as file parts
// under the "images" field.
func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		apiError(w, "owner not authenticated", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		apiError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	fields, err := parseListingFields(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var attachments []listing.Attachment
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				apiError(w, fmt.Sprintf("reading upload %q", fh.Filename), http.StatusBadRequest)
				return
			}
			defer func() {
				if cerr := f.Close(); cerr != nil {
					slog.Warn("closing upload", "filename", fh.Filename, "error", cerr)
				}
			}()
			attachments = append(attachments, listing.Attachment{Filename: fh.Filename, Data: f})
		}
	}

	id, err := s.service.Publish(r.Context(), claims.UserID, fields, attachments)
	if err != nil {
		writeListingError(w, err)
		return
	}

	apiJSON(w, map[string]interface{}{
		"message":   "Listing created successfully!",
		"listingId": id,
	}, http.StatusCreated)
}

// parseListingFields extracts scalar listing fields from the form.
// Absent values stay nil so the service can tell missing from zero.
func parseListingFields(r *http.Request) (listing.Fields, error) {
	fields := listing.Fields{
		Address:      strings.TrimSpace(r.FormValue("address")),
		PropertyType: strings.TrimSpace(r.FormValue("propertyType")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		LeaseTerms:   strings.TrimSpace(r.FormValue("leaseTerms")),
		TermsAgreed:  r.FormValue("termsAgreed") == "true",
	}

	var err error
	if fields.Bedrooms, err = formInt(r, "bedrooms"); err != nil {
		return fields, err
	}
	if fields.Bathrooms, err = formFloat(r, "bathrooms"); err != nil {
		return fields, err
	}
	if fields.SquareFootage, err = formFloat(r, "squareFootage"); err != nil {
		return fields, err
	}
	if fields.MonthlyRent, err = formFloat(r, "monthlyRent"); err != nil {
		return fields, err
	}
	if fields.IncomePercentage, err = formFloat(r, "incomePercentage"); err != nil {
		return fields, err
	}
	if fields.AskingPrice, err = formFloat(r, "askingPrice"); err != nil {
		return fields, err
	}

	return fields, nil
}

func formFloat(r *http.Request, name string) (*float64, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &f, nil
}

func formInt(r *http.Request, name string) (*int64, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}

// handleGetListings returns all listings with images and owner names.
func (s *Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	listings, err := s.listings.ListAll(r.Context())
	if err != nil {
		apiError(w, "failed to fetch listings", http.StatusInternalServerError)
		return
	}

	apiJSON(w, listings, http.StatusOK)
}

// propertyDetailsResponse is the detail view: address doubles as the
// title and the monthly rent as the headline price.
type propertyDetailsResponse struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	Price            float64  `json:"price"`
	PropertyType     *string  `json:"property_type"`
	Bedrooms         *int64   `json:"bedrooms"`
	Bathrooms        *float64 `json:"bathrooms"`
	SquareFootage    *float64 `json:"square_footage"`
	LeaseTerms       *string  `json:"lease_terms"`
	IncomePercentage float64  `json:"income_percentage"`
	AskingPrice      float64  `json:"asking_price"`
	TermsAgreed      bool     `json:"terms_agreed"`
	Images           []string `json:"images"`
	Username         string   `json:"username"`
	PhoneNumber      *string  `json:"phone_number"`
}

// handlePropertyDetails returns one denormalized listing by id.
func (s *Server) handlePropertyDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/propertydetails/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		apiError(w, "invalid listing ID", http.StatusBadRequest)
		return
	}

	l, err := s.listings.GetByID(r.Context(), id)
	if err != nil {
		writeListingError(w, err)
		return
	}

	apiJSON(w, propertyDetailsResponse{
		ID:               l.ID,
		Title:            l.Address,
		Description:      l.Description,
		Price:            l.MonthlyRent,
		PropertyType:     l.PropertyType,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		SquareFootage:    l.SquareFootage,
		LeaseTerms:       l.LeaseTerms,
		IncomePercentage: l.IncomePercentage,
		AskingPrice:      l.AskingPrice,
		TermsAgreed:      l.TermsAgreed,
		Images:           l.Images,
		Username:         l.OwnerName,
		PhoneNumber:      l.OwnerPhone,
	}, http.StatusOK)
}

// handlePricingEstimate suggests an asking price from rent and offered
// income percentage.
func (s *Server) handlePricingEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rent, err := strconv.ParseFloat(r.URL.Query().Get("monthly_rent"), 64)
	if err != nil || rent <= 0 {
		apiError(w, "monthly_rent must be a positive number", http.StatusBadRequest)
		return
	}
	pct, err := strconv.ParseFloat(r.URL.Query().Get("income_percentage"), 64)
	if err != nil || pct <= 0 || pct > 100 {
		apiError(w, "income_percentage must be greater than 0 and at most 100", http.StatusBadRequest)
		return
	}

	estimate := listing.EstimateAskingPrice(rent, pct)
	apiJSON(w, map[string]float64{
		"asking_price": math.Round(estimate*100) / 100,
	}, http.StatusOK)
}
