package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

// Uploader sends one file to the media store and returns its hosted URL.
// The filestore client implements it.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// Coordinator turns the draft's local files into durable URLs at finalize.
// Files are uploaded one by one; the first failure aborts the batch. Files
// uploaded before the failure stay on the store as orphans and are reclaimed
// by the cleanup tool.
type Coordinator struct {
	uploader Uploader
	log      *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(uploader Uploader, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		uploader: uploader,
		log:      logger.With("component", "upload_coordinator"),
	}
}

// Resolve uploads every ref and returns the hosted URLs in input order.
// Any failure maps to domain.ErrUploadFailed.
func (c *Coordinator) Resolve(ctx context.Context, refs []FileRef) ([]string, error) {
	urls := make([]string, 0, len(refs))

	for _, ref := range refs {
		url, err := c.uploader.Upload(ctx, ref.Name, ref.ContentType, bytes.NewReader(ref.Content))
		if err != nil {
			c.log.ErrorContext(ctx, "upload failed",
				slog.String("filename", ref.Name),
				slog.Int("uploaded_before_failure", len(urls)),
				slog.String("error", err.Error()),
			)
			if errors.Is(err, domain.ErrUploadFailed) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %v: %w", ref.Name, err, domain.ErrUploadFailed)
		}
		urls = append(urls, url)
	}

	return urls, nil
}
