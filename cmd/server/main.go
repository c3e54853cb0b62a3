// Command server runs the Gharonda HTTP API.
//
// Configuration comes from environment variables (and an optional config
// file); see internal/config. Requires DATABASE_DSN, AUTH_JWT_SECRET, and
// FILESTORE_BASE_URL.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gharonda/gharonda-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
