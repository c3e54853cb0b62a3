// Package filestore uploads listing media to the external file store over HTTP.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gharonda/gharonda-backend/internal/config"
	"github.com/gharonda/gharonda-backend/internal/domain"
)

// Client talks to the media store's upload endpoint. Files are posted as
// multipart/form-data under the "file" field; the store answers with a JSON
// body carrying the hosted URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxBytes   int64
	log        *slog.Logger
}

// New creates a Client from config.
func New(cfg config.FileStoreConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.UploadTimeout},
		maxBytes:   int64(cfg.MaxFileSizeMB) << 20,
		log:        logger.With("adapter", "filestore"),
	}
}

// uploadResponse is the store's answer to a successful upload.
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends one file to the store and returns its hosted URL.
// Failures of any kind map to domain.ErrUploadFailed so callers can present
// a uniform "upload failed, retry" to the submitter.
func (c *Client) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if c.maxBytes > 0 {
		r = io.LimitReader(r, c.maxBytes+1)
	}

	body, formContentType, err := buildMultipart(filename, contentType, r, c.maxBytes)
	if err != nil {
		return "", fmt.Errorf("filestore: %s: %w", filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return "", fmt.Errorf("filestore: create request: %w", err)
	}
	req.Header.Set("Content-Type", formContentType)

	resp, err := c.doWithRetry(ctx, req, filename)
	if err != nil {
		c.log.ErrorContext(ctx, "upload failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("filestore: %s: %w", filename, domain.ErrUploadFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.ErrorContext(ctx, "upload rejected",
			slog.String("filename", filename),
			slog.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("filestore: %s: status %d: %w", filename, resp.StatusCode, domain.ErrUploadFailed)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("filestore: %s: decode response: %w", filename, domain.ErrUploadFailed)
	}
	if out.URL == "" {
		return "", fmt.Errorf("filestore: %s: empty url in response: %w", filename, domain.ErrUploadFailed)
	}

	c.log.DebugContext(ctx, "upload complete",
		slog.String("filename", filename),
		slog.String("url", out.URL),
	)

	return out.URL, nil
}

// Delete removes a previously uploaded file by its hosted URL.
// Best effort: a 404 from the store is treated as success.
func (c *Client) Delete(ctx context.Context, fileURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fileURL, nil)
	if err != nil {
		return fmt.Errorf("filestore: create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("filestore: delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent &&
		resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("filestore: delete: status %d", resp.StatusCode)
	}
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
// The request body is buffered, so GetBody is available for the second attempt.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, filename string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "upload retry",
		slog.String("filename", filename),
		slog.String("reason", reason),
	)

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	retryBody, bodyErr := req.GetBody()
	if bodyErr != nil {
		return resp, err
	}
	retry := req.Clone(ctx)
	retry.Body = retryBody

	time.Sleep(500 * time.Millisecond)

	return c.httpClient.Do(retry)
}

// buildMultipart assembles the multipart body in memory and enforces the
// size limit. Listing media is bounded by MaxFileSizeMB, so buffering is fine
// and gives us a rewindable body for the retry.
func buildMultipart(filename, contentType string, r io.Reader, maxBytes int64) (*strings.Reader, string, error) {
	var buf strings.Builder
	w := multipart.NewWriter(&buf)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filename),
	}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}

	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}

	n, err := io.Copy(part, r)
	if err != nil {
		return nil, "", fmt.Errorf("copy file: %w", err)
	}
	if maxBytes > 0 && n > maxBytes {
		return nil, "", fmt.Errorf("file exceeds %d bytes: %w", maxBytes, domain.ErrValidation)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return strings.NewReader(buf.String()), w.FormDataContentType(), nil
}
