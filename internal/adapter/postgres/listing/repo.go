// Package listing implements the Listing repository using PostgreSQL.
package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharonda/gharonda-backend/internal/adapter/postgres"
	"github.com/gharonda/gharonda-backend/internal/domain"
)

const table = "listings"

var columns = []string{
	"id", "host_id", "kind", "status", "title", "description", "price",
	"street", "city", "state", "country", "zip_code",
	"photos", "amenities", "security_features", "documents",
	"bedrooms", "bathrooms", "area", "capacity", "cuisine", "seating",
	"created_at", "updated_at",
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// builder is the shared statement builder with $N placeholders.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides listing persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new listing repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new listing and returns the persisted row.
func (r *Repo) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	row := fromDomain(l)

	sql, args, err := builder.
		Insert(table).
		Columns(columns...).
		Values(
			row.ID, row.HostID, row.Kind, row.Status, row.Title, row.Description, row.Price,
			row.Street, row.City, row.State, row.Country, row.ZipCode,
			row.Photos, row.Amenities, row.SecurityFeatures, row.Documents,
			row.Bedrooms, row.Bathrooms, row.Area, row.Capacity, row.Cuisine, row.Seating,
			row.CreatedAt, row.UpdatedAt,
		).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var got listingRow
	if err := pgxscan.Get(ctx, q, &got, sql, args...); err != nil {
		return nil, mapError(err, "listing", l.ID)
	}

	result := toDomain(got)
	return &result, nil
}

// GetByID returns a listing by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var got listingRow
	if err := pgxscan.Get(ctx, q, &got, sql, args...); err != nil {
		return nil, mapError(err, "listing", id)
	}

	result := toDomain(got)
	return &result, nil
}

// UpdateStatus sets the moderation status of a listing unconditionally
// and returns the updated row. The caller decides whether the transition
// is allowed; concurrent decisions are last-write-wins.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error) {
	sql, args, err := builder.
		Update(table).
		Set("status", status.String()).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var got listingRow
	if err := pgxscan.Get(ctx, q, &got, sql, args...); err != nil {
		return nil, mapError(err, "listing", id)
	}

	result := toDomain(got)
	return &result, nil
}

// List returns listings matching the filter, newest first.
func (r *Repo) List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	query := builder.
		Select(columns...).
		From(table).
		OrderBy("created_at DESC, id DESC")

	if f.Kind != nil {
		query = query.Where(squirrel.Eq{"kind": f.Kind.String()})
	}
	if f.Status != nil {
		query = query.Where(squirrel.Eq{"status": f.Status.String()})
	}
	if f.HostID != nil {
		query = query.Where(squirrel.Eq{"host_id": *f.HostID})
	}
	if f.City != "" {
		query = query.Where(squirrel.ILike{"city": f.City})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	query = query.Limit(uint64(limit))
	if f.Offset > 0 {
		query = query.Offset(uint64(f.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var rows []listingRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, mapError(err, "listing", uuid.Nil)
	}

	result := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomain(row))
	}
	return result, nil
}

// Count returns the number of listings matching the filter, ignoring pagination.
func (r *Repo) Count(ctx context.Context, f domain.ListingFilter) (int, error) {
	query := builder.Select("COUNT(*)").From(table)

	if f.Kind != nil {
		query = query.Where(squirrel.Eq{"kind": f.Kind.String()})
	}
	if f.Status != nil {
		query = query.Where(squirrel.Eq{"status": f.Status.String()})
	}
	if f.HostID != nil {
		query = query.Where(squirrel.Eq{"host_id": *f.HostID})
	}
	if f.City != "" {
		query = query.Where(squirrel.ILike{"city": f.City})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, mapError(err, "listing", uuid.Nil)
	}
	return count, nil
}

func columnList() string {
	out := columns[0]
	for _, c := range columns[1:] {
		out += ", " + c
	}
	return out
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	// pgx.ErrNoRows -> domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	// PgError codes
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %s: %w", entity, id, err)
}

// ---------------------------------------------------------------------------
// Mapping helpers: row <-> domain
// ---------------------------------------------------------------------------

// listingRow mirrors the listings table. Kind-specific columns are nullable
// and populated according to the kind discriminator.
type listingRow struct {
	ID               uuid.UUID `db:"id"`
	HostID           uuid.UUID `db:"host_id"`
	Kind             string    `db:"kind"`
	Status           string    `db:"status"`
	Title            string    `db:"title"`
	Description      string    `db:"description"`
	Price            float64   `db:"price"`
	Street           string    `db:"street"`
	City             string    `db:"city"`
	State            string    `db:"state"`
	Country          string    `db:"country"`
	ZipCode          string    `db:"zip_code"`
	Photos           []string  `db:"photos"`
	Amenities        []string  `db:"amenities"`
	SecurityFeatures []string  `db:"security_features"`
	Documents        []string  `db:"documents"`
	Bedrooms         *int      `db:"bedrooms"`
	Bathrooms        *int      `db:"bathrooms"`
	Area             *int      `db:"area"`
	Capacity         *int      `db:"capacity"`
	Cuisine          *string   `db:"cuisine"`
	Seating          *int      `db:"seating"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func fromDomain(l *domain.Listing) listingRow {
	row := listingRow{
		ID:               l.ID,
		HostID:           l.HostID,
		Kind:             l.Kind.String(),
		Status:           l.Status.String(),
		Title:            l.Title,
		Description:      l.Description,
		Price:            l.Price,
		Street:           l.Location.Street,
		City:             l.Location.City,
		State:            l.Location.State,
		Country:          l.Location.Country,
		ZipCode:          l.Location.ZipCode,
		Photos:           emptyIfNil(l.Photos),
		Amenities:        emptyIfNil(l.Amenities),
		SecurityFeatures: emptyIfNil(l.SecurityFeatures),
		Documents:        emptyIfNil(l.Documents),
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}

	switch {
	case l.Details.Flat != nil:
		row.Bedrooms = l.Details.Flat.Bedrooms
		row.Bathrooms = l.Details.Flat.Bathrooms
		row.Area = l.Details.Flat.Area
	case l.Details.Garden != nil:
		row.Capacity = l.Details.Garden.Capacity
		row.Area = l.Details.Garden.Area
	case l.Details.Restaurant != nil:
		if l.Details.Restaurant.Cuisine != "" {
			cuisine := l.Details.Restaurant.Cuisine
			row.Cuisine = &cuisine
		}
		row.Seating = l.Details.Restaurant.Seating
	}

	return row
}

func toDomain(row listingRow) domain.Listing {
	l := domain.Listing{
		ID:          row.ID,
		HostID:      row.HostID,
		Kind:        domain.ListingKind(row.Kind),
		Status:      domain.ListingStatus(row.Status),
		Title:       row.Title,
		Description: row.Description,
		Price:       row.Price,
		Location: domain.Location{
			Street:  row.Street,
			City:    row.City,
			State:   row.State,
			Country: row.Country,
			ZipCode: row.ZipCode,
		},
		Photos:           emptyIfNil(row.Photos),
		Amenities:        emptyIfNil(row.Amenities),
		SecurityFeatures: emptyIfNil(row.SecurityFeatures),
		Documents:        emptyIfNil(row.Documents),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	switch l.Kind {
	case domain.ListingKindFlat:
		l.Details.Flat = &domain.FlatDetails{
			Bedrooms:  row.Bedrooms,
			Bathrooms: row.Bathrooms,
			Area:      row.Area,
		}
	case domain.ListingKindGarden:
		l.Details.Garden = &domain.GardenDetails{
			Capacity: row.Capacity,
			Area:     row.Area,
		}
	case domain.ListingKindRestaurant:
		details := &domain.RestaurantDetails{Seating: row.Seating}
		if row.Cuisine != nil {
			details.Cuisine = *row.Cuisine
		}
		l.Details.Restaurant = details
	}

	return l
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
