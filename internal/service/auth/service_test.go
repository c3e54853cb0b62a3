package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authpkg "github.com/gharonda/gharonda-backend/internal/auth"
	"github.com/gharonda/gharonda-backend/internal/config"
	"github.com/gharonda/gharonda-backend/internal/domain"
	"github.com/gharonda/gharonda-backend/pkg/ctxutil"
)

//go:generate moq -out user_repo_mock_test.go -pkg auth . userRepo
//go:generate moq -out token_repo_mock_test.go -pkg auth . tokenRepo
//go:generate moq -out tx_manager_mock_test.go -pkg auth . txManager
//go:generate moq -out jwt_manager_mock_test.go -pkg auth . jwtManager

// defaultCfg returns a config suitable for most tests.
func defaultCfg() config.AuthConfig {
	return config.AuthConfig{
		RefreshTokenTTL:  30 * 24 * time.Hour,
		PasswordHashCost: bcrypt.MinCost, // fast tests
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hashPassword returns a bcrypt hash for testing.
func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	return string(hash)
}

func okJWT() *jwtManagerMock {
	return &jwtManagerMock{
		GenerateAccessTokenFunc: func(uuid.UUID, domain.Role) (string, error) {
			return "access_token_123", nil
		},
		GenerateRefreshTokenFunc: func() (string, string, error) {
			return "raw_refresh_123", authpkg.HashToken("raw_refresh_123"), nil
		},
	}
}

func okTokens() *tokenRepoMock {
	return &tokenRepoMock{
		CreateFunc: func(context.Context, *domain.RefreshToken) error { return nil },
	}
}

func passthroughTx() *txManagerMock {
	return &txManagerMock{
		RunInTxFunc: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestService_Register_HappyPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	usersMock := &userRepoMock{
		CreateFunc: func(_ context.Context, user *domain.User) (*domain.User, error) {
			created := *user
			return &created, nil
		},
	}
	jwtMock := okJWT()
	tokensMock := okTokens()

	svc := NewService(testLogger(), usersMock, tokensMock, passthroughTx(), jwtMock, defaultCfg())

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "  Seller@Example.COM ",
		Password: "hunter2hunter2",
		Name:     "Seller One",
		Role:     domain.RoleSeller,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.AccessToken != "access_token_123" || result.RefreshToken != "raw_refresh_123" {
		t.Error("expected issued token pair in result")
	}
	if result.User.Email != "seller@example.com" {
		t.Errorf("email = %q, want normalized lowercase", result.User.Email)
	}
	if result.User.Role != domain.RoleSeller {
		t.Errorf("role = %s, want seller", result.User.Role)
	}

	created := usersMock.CreateCalls()[0].User
	if created.PasswordHash == "hunter2hunter2" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	if got := jwtMock.GenerateAccessTokenCalls(); len(got) != 1 || got[0].Role != domain.RoleSeller {
		t.Errorf("access token generated with %+v, want seller role", got)
	}
	if stored := tokensMock.CreateCalls(); len(stored) != 1 || stored[0].Token.TokenHash != authpkg.HashToken("raw_refresh_123") {
		t.Error("expected hashed refresh token to be stored")
	}
}

func TestService_Register_DefaultsToBuyer(t *testing.T) {
	t.Parallel()

	usersMock := &userRepoMock{
		CreateFunc: func(_ context.Context, user *domain.User) (*domain.User, error) {
			return user, nil
		},
	}
	svc := NewService(testLogger(), usersMock, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Role != domain.RoleBuyer {
		t.Errorf("role = %s, want buyer by default", result.User.Role)
	}
}

func TestService_Register_AdminNotSelfAssignable(t *testing.T) {
	t.Parallel()

	svc := NewService(testLogger(), &userRepoMock{}, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "mallory@example.com",
		Password: "password123",
		Role:     domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for admin role, got: %v", err)
	}
}

func TestService_Register_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewService(testLogger(), &userRepoMock{}, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{name: "missing email", input: RegisterInput{Password: "password123"}},
		{name: "bad email", input: RegisterInput{Email: "not-an-email", Password: "password123"}},
		{name: "short password", input: RegisterInput{Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got: %v", err)
			}
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	usersMock := &userRepoMock{
		CreateFunc: func(context.Context, *domain.User) (*domain.User, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	svc := NewService(testLogger(), usersMock, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestService_Login_HappyPath(t *testing.T) {
	t.Parallel()

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "seller@example.com",
		PasswordHash: hashPassword(t, "hunter2hunter2"),
		Role:         domain.RoleSeller,
	}
	usersMock := &userRepoMock{
		GetByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			if email != "seller@example.com" {
				t.Errorf("GetByEmail called with %q", email)
			}
			return user, nil
		},
	}
	svc := NewService(testLogger(), usersMock, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "Seller@Example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.User.ID != user.ID {
		t.Error("expected the stored user in the result")
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	usersMock := &userRepoMock{
		GetByEmailFunc: func(context.Context, string) (*domain.User, error) {
			return &domain.User{
				ID:           uuid.New(),
				PasswordHash: hashPassword(t, "correct-password"),
			}, nil
		},
	}
	svc := NewService(testLogger(), usersMock, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "wrong-password"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	usersMock := &userRepoMock{
		GetByEmailFunc: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := NewService(testLogger(), usersMock, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever1"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown email must not leak, expected ErrUnauthorized, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestService_Refresh_RotatesToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	oldToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: authpkg.HashToken("old_raw"),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	tokensMock := &tokenRepoMock{
		GetByHashFunc: func(_ context.Context, hash string) (*domain.RefreshToken, error) {
			if hash != oldToken.TokenHash {
				return nil, domain.ErrNotFound
			}
			return oldToken, nil
		},
		RevokeByIDFunc: func(_ context.Context, id uuid.UUID) error {
			if id != oldToken.ID {
				t.Errorf("revoked %s, want %s", id, oldToken.ID)
			}
			return nil
		},
		CreateFunc: func(context.Context, *domain.RefreshToken) error { return nil },
	}
	usersMock := &userRepoMock{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: userID, Role: domain.RoleBuyer}, nil
		},
	}
	txMock := passthroughTx()

	svc := NewService(testLogger(), usersMock, tokensMock, txMock, okJWT(), defaultCfg())

	result, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: "old_raw"})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result.RefreshToken != "raw_refresh_123" {
		t.Error("expected a fresh refresh token")
	}
	if len(tokensMock.RevokeByIDCalls()) != 1 {
		t.Error("old token must be revoked")
	}
	if len(tokensMock.CreateCalls()) != 1 {
		t.Error("replacement token must be stored")
	}
	if len(txMock.RunInTxCalls()) != 1 {
		t.Error("rotation must run in a transaction")
	}
}

func TestService_Refresh_UnknownToken(t *testing.T) {
	t.Parallel()

	tokensMock := &tokenRepoMock{
		GetByHashFunc: func(context.Context, string) (*domain.RefreshToken, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := NewService(testLogger(), &userRepoMock{}, tokensMock, passthroughTx(), okJWT(), defaultCfg())

	_, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: "reused_or_fake"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestService_Refresh_ExpiredToken(t *testing.T) {
	t.Parallel()

	tokensMock := &tokenRepoMock{
		GetByHashFunc: func(context.Context, string) (*domain.RefreshToken, error) {
			return &domain.RefreshToken{
				ID:        uuid.New(),
				UserID:    uuid.New(),
				ExpiresAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}
	svc := NewService(testLogger(), &userRepoMock{}, tokensMock, passthroughTx(), okJWT(), defaultCfg())

	_, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: "expired"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Logout / ValidateToken
// ---------------------------------------------------------------------------

func TestService_Logout(t *testing.T) {
	t.Parallel()

	p := domain.Principal{ID: uuid.New(), Role: domain.RoleBuyer}
	tokensMock := &tokenRepoMock{
		RevokeAllByUserFunc: func(_ context.Context, userID uuid.UUID) error {
			if userID != p.ID {
				t.Errorf("revoked for %s, want %s", userID, p.ID)
			}
			return nil
		},
	}
	svc := NewService(testLogger(), &userRepoMock{}, tokensMock, passthroughTx(), okJWT(), defaultCfg())

	ctx := ctxutil.WithPrincipal(context.Background(), p)
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(tokensMock.RevokeAllByUserCalls()) != 1 {
		t.Error("expected all refresh tokens revoked")
	}
}

func TestService_Logout_NoPrincipal(t *testing.T) {
	t.Parallel()

	svc := NewService(testLogger(), &userRepoMock{}, okTokens(), passthroughTx(), okJWT(), defaultCfg())

	if err := svc.Logout(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestService_ValidateToken(t *testing.T) {
	t.Parallel()

	p := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}
	jwtMock := &jwtManagerMock{
		ValidateAccessTokenFunc: func(token string) (domain.Principal, error) {
			if token == "good" {
				return p, nil
			}
			return domain.Principal{}, errors.New("bad signature")
		},
	}
	svc := NewService(testLogger(), &userRepoMock{}, okTokens(), passthroughTx(), jwtMock, defaultCfg())

	got, err := svc.ValidateToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got != p {
		t.Errorf("principal = %+v, want %+v", got, p)
	}

	if _, err := svc.ValidateToken(context.Background(), "bad"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}
