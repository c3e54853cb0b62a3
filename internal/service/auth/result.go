package auth

import "github.com/gharonda/gharonda-backend/internal/domain"

// AuthResult is returned by Register, Login, and Refresh.
// RefreshToken is the raw token; only its hash is stored server-side.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}
