// Command cleanup-uploads removes file-store objects orphaned by abandoned
// wizard drafts: uploads that finished but whose draft was never submitted.
// Candidate URLs are read from stdin, one per line (the file store's audit
// listing is the usual source); every URL not referenced by any listing is
// deleted. It is intended to be invoked by an external cron job.
//
// Usage:
//
//	filestore-audit --since 24h | cleanup-uploads [--dry-run]
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharonda/gharonda-backend/internal/adapter/filestore"
	"github.com/gharonda/gharonda-backend/internal/adapter/postgres"
	"github.com/gharonda/gharonda-backend/internal/app"
	"github.com/gharonda/gharonda-backend/internal/config"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report orphans without deleting them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	store := filestore.New(cfg.FileStore, logger)

	var checked, orphans, deleted int
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url == "" {
			continue
		}
		checked++

		referenced, err := isReferenced(ctx, pool, url)
		if err != nil {
			logger.Error("reference check failed",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		if referenced {
			continue
		}
		orphans++

		if *dryRun {
			logger.Info("orphan found", slog.String("url", url))
			continue
		}
		if err := store.Delete(ctx, url); err != nil {
			logger.Warn("delete failed",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
			continue
		}
		deleted++
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read stdin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("upload cleanup completed",
		slog.Int("checked", checked),
		slog.Int("orphans", orphans),
		slog.Int("deleted", deleted),
		slog.Bool("dry_run", *dryRun),
	)
}

// isReferenced reports whether any listing carries the URL as a photo or
// document.
func isReferenced(ctx context.Context, pool *pgxpool.Pool, url string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM listings WHERE $1 = ANY(photos) OR $1 = ANY(documents))",
		url,
	).Scan(&exists)
	return exists, err
}
