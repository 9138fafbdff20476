package service

import (
	"context"

	"conectar/internal/domain/entity"
)

// OAuthUser represents user information delivered by an OAuth provider after
// external authorization. This core only consumes the id/name/email triple.
type OAuthUser struct {
	ID            string              // Provider-specific user ID (e.g., Google's 'sub' claim)
	Email         string              // User's primary email address
	Name          string              // User's display name
	Provider      entity.ProviderType // The OAuth provider
	AvatarURL     string              // URL to the user's profile picture
	EmailVerified bool                // Whether the email is verified by the provider
}

// OAuthAuthService defines the interface for verifying OAuth ID tokens.
// This is used for Google Sign-In where the client sends an ID token directly.
type OAuthAuthService interface {
	// VerifyIDToken verifies an OAuth ID token and returns user information.
	VerifyIDToken(ctx context.Context, idToken string) (*OAuthUser, error)

	// Provider returns the OAuth provider type.
	Provider() entity.ProviderType
}

// OAuthCodeService defines the interface for the redirect-based authorization
// code flow: building the consent URL and exchanging the callback code for
// the user's profile.
type OAuthCodeService interface {
	// BuildAuthorizationURL constructs the provider consent URL with a CSRF
	// state parameter.
	BuildAuthorizationURL() string

	// ExchangeCode validates the state, exchanges the authorization code and
	// returns the authenticated user's profile.
	ExchangeCode(ctx context.Context, code, state string) (*OAuthUser, error)
}
