package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location is the address block shared by all listing kinds.
type Location struct {
	Street  string
	City    string
	State   string
	Country string
	ZipCode string
}

// FlatDetails holds attributes specific to flat listings.
// Optional fields are nil when the host did not provide them.
type FlatDetails struct {
	Bedrooms  *int
	Bathrooms *int
	Area      *int
}

// GardenDetails holds attributes specific to marriage garden listings.
type GardenDetails struct {
	Capacity *int
	Area     *int
}

// RestaurantDetails holds attributes specific to restaurant listings.
type RestaurantDetails struct {
	Cuisine string
	Seating *int
}

// ListingDetails is the kind-specific part of a listing, keyed by Kind.
// Exactly one of the pointers is non-nil for a well-formed listing.
type ListingDetails struct {
	Flat       *FlatDetails
	Garden     *GardenDetails
	Restaurant *RestaurantDetails
}

// Listing is a persisted property or venue record with a moderation status.
// HostID is stamped from the authenticated submitter at creation and is
// immutable thereafter. Status changes only through the moderation service.
type Listing struct {
	ID               uuid.UUID
	HostID           uuid.UUID
	Kind             ListingKind
	Status           ListingStatus
	Title            string
	Description      string
	Price            float64
	Location         Location
	Photos           []string
	Amenities        []string
	SecurityFeatures []string
	Documents        []string
	Details          ListingDetails
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ListingFilter narrows listing queries.
type ListingFilter struct {
	Kind   *ListingKind
	Status *ListingStatus
	City   string
	HostID *uuid.UUID
	Limit  int
	Offset int
}
