package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with the given role. Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.Role) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:           uuid.New(),
		Email:        "testuser-" + suffix + "@example.com",
		PasswordHash: "$2a$10$seeded-hash-" + suffix,
		Name:         "Test User " + suffix,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role.String(), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// SeedListing creates a PENDING flat listing owned by hostID.
// Returns a filled domain.Listing.
func SeedListing(t *testing.T, pool *pgxpool.Pool, hostID uuid.UUID) domain.Listing {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	bedrooms, bathrooms, area := 2, 1, 85
	listing := domain.Listing{
		ID:          uuid.New(),
		HostID:      hostID,
		Kind:        domain.ListingKindFlat,
		Status:      domain.ListingStatusPending,
		Title:       "Seeded Flat " + suffix,
		Description: "A seeded flat listing used by integration tests.",
		Price:       150,
		Location: domain.Location{
			Street:  "12 Test Street",
			City:    "Indore",
			State:   "MP",
			Country: "India",
			ZipCode: "452001",
		},
		Photos:           []string{"https://media.example.com/seeded-" + suffix + ".jpg"},
		Amenities:        []string{"WiFi", "Parking"},
		SecurityFeatures: []string{"smoke-alarm"},
		Documents:        []string{},
		Details: domain.ListingDetails{
			Flat: &domain.FlatDetails{Bedrooms: &bedrooms, Bathrooms: &bathrooms, Area: &area},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO listings (
		     id, host_id, kind, status, title, description, price,
		     street, city, state, country, zip_code,
		     photos, amenities, security_features, documents,
		     bedrooms, bathrooms, area, created_at, updated_at
		 ) VALUES (
		     $1, $2, $3, $4, $5, $6, $7,
		     $8, $9, $10, $11, $12,
		     $13, $14, $15, $16,
		     $17, $18, $19, $20, $21
		 )`,
		listing.ID, listing.HostID, listing.Kind.String(), listing.Status.String(),
		listing.Title, listing.Description, listing.Price,
		listing.Location.Street, listing.Location.City, listing.Location.State,
		listing.Location.Country, listing.Location.ZipCode,
		listing.Photos, listing.Amenities, listing.SecurityFeatures, listing.Documents,
		bedrooms, bathrooms, area, listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedListing insert: %v", err)
	}

	return listing
}
