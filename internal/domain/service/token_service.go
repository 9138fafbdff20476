package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by both token kinds. The payload
// is deliberately minimal: the subject identifies the account, and the type
// claim pins the token to one verification context so a refresh token is
// never accepted where an access token is expected.
type Claims struct {
	UserID uuid.UUID
	Type   string
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateTokens creates a new access token and refresh token for a given
	// user. The two signing operations are independent pure computations and
	// may run concurrently.
	GenerateTokens(userID uuid.UUID) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks a token string against the access
	// secret/expiry configuration.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks a token string against the refresh
	// secret/expiry configuration.
	ValidateRefreshToken(tokenString string) (*Claims, error)
}
