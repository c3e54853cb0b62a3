//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/gharonda/gharonda-backend/internal/access"
	"github.com/gharonda/gharonda-backend/internal/adapter/filestore"
	"github.com/gharonda/gharonda-backend/internal/adapter/postgres"
	listingrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/listing"
	"github.com/gharonda/gharonda-backend/internal/adapter/postgres/testhelper"
	tokenrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/token"
	userrepo "github.com/gharonda/gharonda-backend/internal/adapter/postgres/user"
	authpkg "github.com/gharonda/gharonda-backend/internal/auth"
	"github.com/gharonda/gharonda-backend/internal/config"
	"github.com/gharonda/gharonda-backend/internal/domain"
	authsvc "github.com/gharonda/gharonda-backend/internal/service/auth"
	listingsvc "github.com/gharonda/gharonda-backend/internal/service/listing"
	moderationsvc "github.com/gharonda/gharonda-backend/internal/service/moderation"
	"github.com/gharonda/gharonda-backend/internal/transport/middleware"
	"github.com/gharonda/gharonda-backend/internal/transport/rest"
	"github.com/gharonda/gharonda-backend/internal/wizard"
)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL      string
	Client   *http.Client
	Pool     *pgxpool.Pool
	MediaURL string
	jwt      *authpkg.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper) and an in-test media store.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)
	gate := access.NewGate()

	users := userrepo.New(pool)
	tokens := tokenrepo.New(pool)
	listings := listingrepo.New(pool)

	jwtSecret := "test-secret-at-least-32-chars-long!!"
	jwtIssuer := "test-issuer"
	accessTTL := 15 * time.Minute
	jwtMgr := authpkg.NewJWTManager(jwtSecret, jwtIssuer, accessTTL)

	authService := authsvc.NewService(logger, users, tokens, txm, jwtMgr,
		config.AuthConfig{
			JWTSecret:        jwtSecret,
			JWTIssuer:        jwtIssuer,
			AccessTokenTTL:   accessTTL,
			RefreshTokenTTL:  720 * time.Hour,
			PasswordHashCost: 4, // bcrypt.MinCost, keeps the suite fast
		},
	)
	listingService := listingsvc.NewService(logger, listings, gate)
	moderationService := moderationsvc.NewService(logger, listings, gate)

	// In-test media store: accepts multipart uploads, answers with a
	// hosted URL the way the real backend does.
	mediaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"url": "https://media.example.com/" + uuid.NewString(),
		})
	}))
	t.Cleanup(mediaSrv.Close)

	uploader := filestore.New(config.FileStoreConfig{
		BaseURL:       mediaSrv.URL,
		UploadTimeout: 5 * time.Second,
		MaxFileSizeMB: 25,
	}, logger)
	coordinator := wizard.NewCoordinator(uploader, logger)
	wizardStore := wizard.NewStore(config.WizardConfig{
		SessionTTL:      time.Hour,
		SweepInterval:   time.Minute,
		MaxPerPrincipal: 5,
	}, gate, coordinator, listingService, logger)

	router := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(pool, wizardStore, "test-version"),
		Auth:    rest.NewAuthHandler(authService, logger),
		Listing: rest.NewListingHandler(listingService, logger),
		Wizard:  rest.NewWizardHandler(wizardStore, logger),
		Admin:   rest.NewAdminHandler(moderationService, listingService, logger),
	})

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		limiter.Limit(10000),
		middleware.Auth(authService),
	)

	srv := httptest.NewServer(chain(router))
	t.Cleanup(srv.Close)

	return &testServer{
		URL:      srv.URL,
		Client:   srv.Client(),
		Pool:     pool,
		MediaURL: mediaSrv.URL,
		jwt:      jwtMgr,
	}
}

// restRequest sends a JSON request and returns the raw response.
func restRequest(t *testing.T, ts *testServer, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err, "create request")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err, "do request")
	return resp
}

// decodeBody decodes the response body into a generic map and closes it.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body), "decode response body")
	return body
}

// seedUserToken inserts a user with the given role directly into the DB and
// returns a valid access token for it.
func seedUserToken(t *testing.T, ts *testServer, role domain.Role) (string, domain.User) {
	t.Helper()

	user := testhelper.SeedUser(t, ts.Pool, role)
	token, err := ts.jwt.GenerateAccessToken(user.ID, user.Role)
	require.NoError(t, err, "generate access token")
	return token, user
}
