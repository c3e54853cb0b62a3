// Package app wires configuration, storage, services, and transport into a
// running HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"

	"github.com/gharonda/gharonda-backend/internal/access"
	"github.com/gharonda/gharonda-backend/internal/adapter/filestore"
	"github.com/gharonda/gharonda-backend/internal/adapter/postgres"
	listingrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/listing"
	tokenrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/token"
	userrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/user"
	"github.com/gharonda/gharonda-backend/internal/auth"
	"github.com/gharonda/gharonda-backend/internal/config"
	authsvc "github.com/gharonda/gharonda-backend/internal/service/auth"
	listingsvc "github.com/gharonda/gharonda-backend/internal/service/listing"
	moderationsvc "github.com/gharonda/gharonda-backend/internal/service/moderation"
	"github.com/gharonda/gharonda-backend/internal/transport/middleware"
	"github.com/gharonda/gharonda-backend/internal/transport/rest"
	"github.com/gharonda/gharonda-backend/internal/wizard"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires services and transport, and serves until the context
// is cancelled. Shutdown is graceful within the configured timeout.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := migrate(cfg.Database); err != nil {
			return err
		}
		logger.Info("migrations applied", slog.String("dir", cfg.Database.MigrationsDir))
	}

	gate := access.NewGate()
	txManager := postgres.NewTxManager(pool)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	users := userrepo.New(pool)
	tokens := tokenrepo.New(pool)
	listings := listingrepo.New(pool)

	authService := authsvc.NewService(logger, users, tokens, txManager, jwtManager, cfg.Auth)
	listingService := listingsvc.NewService(logger, listings, gate)
	moderationService := moderationsvc.NewService(logger, listings, gate)

	uploader := filestore.New(cfg.FileStore, logger)
	coordinator := wizard.NewCoordinator(uploader, logger)
	wizardStore := wizard.NewStore(cfg.Wizard, gate, coordinator, listingService, logger)
	go wizardStore.RunSweeper(ctx)

	router := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(pool, wizardStore, BuildVersion()),
		Auth:    rest.NewAuthHandler(authService, logger),
		Listing: rest.NewListingHandler(listingService, logger),
		Wizard:  rest.NewWizardHandler(wizardStore, logger),
		Admin:   rest.NewAdminHandler(moderationService, listingService, logger),
	})

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		limiter.Limit(cfg.Server.RateLimitPerMin),
		middleware.Auth(authService),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      chain(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func migrate(cfg config.DatabaseConfig) error {
	db, err := goose.OpenDBWithDriver("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
