// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"conectar/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleCallbackInput carries the verified Google authorization result.
type GoogleCallbackInput struct {
	IDToken string `json:"idToken"`
	Code    string `json:"code"`
	State   string `json:"state"`
}

// --- Output DTOs ---

// TokenPair is returned by login and refresh: the account id plus a fresh
// access/refresh token pair. Issuing the pair rotates the stored refresh
// token hash, so each pair invalidates its predecessor.
type TokenPair struct {
	ID           uuid.UUID `json:"id"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

// Identity is the authenticated caller resolved from a verified access token.
type Identity struct {
	ID   uuid.UUID   `json:"id"`
	Role entity.Role `json:"role"`
}

// AuthUsecase defines the interface for the authentication and
// token-lifecycle operations. This is the contract the delivery layer
// depends on.
type AuthUsecase interface {
	// Login verifies credentials, issues a token pair and rotates the stored
	// refresh token hash, updating the last-login timestamp.
	Login(ctx context.Context, input *LoginInput) (*TokenPair, error)

	// Refresh verifies the presented refresh token against the stored hash,
	// issues a new pair and rotates the hash. The last-login timestamp is
	// not touched.
	Refresh(ctx context.Context, userID uuid.UUID, presentedToken string) (*TokenPair, error)

	// Logout revokes the stored refresh token hash for the user.
	Logout(ctx context.Context, userID uuid.UUID) error

	// ResolveIdentity loads the account's current role for a verified access
	// token subject. Used by every protected request.
	ResolveIdentity(ctx context.Context, userID uuid.UUID) (*Identity, error)

	// LoginWithGoogle resolves or creates the social account for a verified
	// Google identity and performs the login side effects.
	LoginWithGoogle(ctx context.Context, input *GoogleCallbackInput) (*TokenPair, *Identity, error)
}
