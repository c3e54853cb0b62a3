// Command seed populates a fresh database with demo accounts and listings
// for local development. It is idempotent by email: rerunning against an
// already seeded database skips existing accounts.
//
// Accounts (password "password123" for all):
//
//	admin@gharonda.dev   admin
//	seller@gharonda.dev  seller
//	buyer@gharonda.dev   buyer
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gharonda/gharonda-backend/internal/adapter/postgres"
	listingrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/listing"
	userrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/user"
	"github.com/gharonda/gharonda-backend/internal/app"
	"github.com/gharonda/gharonda-backend/internal/config"
	"github.com/gharonda/gharonda-backend/internal/domain"
)

const demoPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	users := userrepo.New(pool)
	listings := listingrepo.New(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), cfg.Auth.PasswordHashCost)
	if err != nil {
		logger.Error("hash demo password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	seller := seedUser(ctx, logger, users, "seller@gharonda.dev", "Demo Seller", domain.RoleSeller, string(hash))
	seedUser(ctx, logger, users, "admin@gharonda.dev", "Demo Admin", domain.RoleAdmin, string(hash))
	seedUser(ctx, logger, users, "buyer@gharonda.dev", "Demo Buyer", domain.RoleBuyer, string(hash))

	if seller == nil {
		logger.Info("seed completed, listings skipped (seller already present)")
		return
	}

	for _, l := range demoListings(seller.ID) {
		if _, err := listings.Create(ctx, &l); err != nil {
			logger.Error("seed listing", slog.String("title", l.Title), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("listing seeded", slog.String("title", l.Title), slog.String("status", l.Status.String()))
	}

	logger.Info("seed completed")
}

type userCreator interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// seedUser creates a demo account, returning nil when it already exists.
func seedUser(ctx context.Context, logger *slog.Logger, users userCreator, email, name string, role domain.Role, hash string) *domain.User {
	now := time.Now()
	created, err := users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		logger.Info("account exists, skipping", slog.String("email", email))
		return nil
	}
	if err != nil {
		logger.Error("seed account", slog.String("email", email), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("account seeded", slog.String("email", email), slog.String("role", role.String()))
	return created
}

func demoListings(hostID uuid.UUID) []domain.Listing {
	now := time.Now()
	beds, baths, area := 2, 1, 950
	capacity, gardenArea := 500, 12000
	seating := 64

	base := func(kind domain.ListingKind, status domain.ListingStatus, title, desc string, price float64) domain.Listing {
		return domain.Listing{
			ID:          uuid.New(),
			HostID:      hostID,
			Kind:        kind,
			Status:      status,
			Title:       title,
			Description: desc,
			Price:       price,
			Location: domain.Location{
				Street:  "12 Lake Road",
				City:    "Bhopal",
				State:   "Madhya Pradesh",
				Country: "India",
				ZipCode: "462001",
			},
			Photos:           []string{"https://files.gharonda.dev/demo/" + uuid.NewString() + ".jpg"},
			Amenities:        []string{"wifi", "parking", "power_backup"},
			SecurityFeatures: []string{"cctv", "security_guard"},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	flat := base(domain.ListingKindFlat, domain.ListingStatusApproved,
		"Sunny Two Bedroom Flat",
		"Bright east-facing flat near the metro with a balcony and covered parking.",
		18500)
	flat.Details.Flat = &domain.FlatDetails{Bedrooms: &beds, Bathrooms: &baths, Area: &area}

	garden := base(domain.ListingKindGarden, domain.ListingStatusApproved,
		"Lakeview Marriage Garden",
		"Open lawn by the upper lake with in-house catering and ample parking.",
		95000)
	garden.Details.Garden = &domain.GardenDetails{Capacity: &capacity, Area: &gardenArea}

	restaurant := base(domain.ListingKindRestaurant, domain.ListingStatusPending,
		"Spice Route Family Restaurant",
		"Two-floor family restaurant on the main market road, fully fitted kitchen.",
		45000)
	restaurant.Details.Restaurant = &domain.RestaurantDetails{Cuisine: "North Indian", Seating: &seating}

	return []domain.Listing{flat, garden, restaurant}
}
