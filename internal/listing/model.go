// Package listing provides the listing domain model, persistence, and the
// publication workflow.
package listing

import (
	"math"
	"time"
)

// PropertyType enumerates the kinds of property a listing can describe.
type PropertyType string

const (
	PropertyTypeHome      PropertyType = "home"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeTownhouse PropertyType = "townhouse"
)

// ValidPropertyType returns true if s is a known property type.
// The empty string means unset and is allowed.
func ValidPropertyType(s string) bool {
	switch PropertyType(s) {
	case "", PropertyTypeHome, PropertyTypeApartment, PropertyTypeTownhouse:
		return true
	}
	return false
}

// Listing represents a published offer to sell a percentage of a
// property's rental income. Read paths populate the denormalized
// Images and OwnerName fields from the join queries.
type Listing struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	Address          string    `json:"address"`
	PropertyType     *string   `json:"property_type,omitempty"`
	Bedrooms         *int64    `json:"bedrooms,omitempty"`
	Bathrooms        *float64  `json:"bathrooms,omitempty"`
	SquareFootage    *float64  `json:"square_footage,omitempty"`
	Description      *string   `json:"description,omitempty"`
	MonthlyRent      float64   `json:"monthly_rent"`
	IncomePercentage float64   `json:"income_percentage"`
	AskingPrice      float64   `json:"asking_price"`
	LeaseTerms       *string   `json:"lease_terms,omitempty"`
	TermsAgreed      bool      `json:"terms_agreed"`
	Images           []string  `json:"images"`
	OwnerName        string    `json:"owner_name"`
	OwnerPhone       *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// DisplayBathrooms floors the bathroom count for presentation.
// The stored value keeps its fraction (1.5 stays 1.5).
func (l *Listing) DisplayBathrooms() int {
	if l.Bathrooms == nil {
		return 0
	}
	return int(math.Floor(*l.Bathrooms))
}
