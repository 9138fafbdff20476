package google

import (
	"context"
	"log/slog"

	"conectar/config"
	"conectar/internal/domain/entity"
	domainerrors "conectar/internal/domain/errors"
	"conectar/internal/domain/service"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
)

// idTokenValidator abstracts idtoken.Validate so tests can stub the network call.
type idTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// AuthService verifies Google ID tokens against the configured client ID.
type AuthService struct {
	clientID string
	logger   *slog.Logger
	validate idTokenValidator
}

// NewAuthService creates a Google ID-token verifier.
func NewAuthService(cfg *config.Config, logger *slog.Logger) service.OAuthAuthService {
	return &AuthService{
		clientID: cfg.GoogleOAuth.ClientID,
		logger:   logger,
		validate: idtoken.Validate,
	}
}

// VerifyIDToken implements service.OAuthAuthService. The audience check
// against the configured client ID happens inside the validator.
func (s *AuthService) VerifyIDToken(ctx context.Context, idToken string) (*service.OAuthUser, error) {
	payload, err := s.validate(ctx, idToken, s.clientID)
	if err != nil {
		s.logger.Warn("Google ID token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage(errors.Wrap(err, "validate id token").Error())
	}

	user := &service.OAuthUser{
		ID:            payload.Subject,
		Email:         claimString(payload, "email"),
		Name:          claimString(payload, "name"),
		Provider:      entity.ProviderTypeGoogle,
		AvatarURL:     claimString(payload, "picture"),
		EmailVerified: claimBool(payload, "email_verified"),
	}

	if user.Email == "" {
		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("id token carries no email claim")
	}
	if !user.EmailVerified {
		return nil, domainerrors.ErrOAuthTokenInvalid.WrapMessage("email not verified by provider")
	}

	s.logger.Info("Google ID token verified",
		slog.String("subject", user.ID),
		slog.String("email", user.Email))

	return user, nil
}

// Provider returns the OAuth provider type.
func (s *AuthService) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

func claimString(payload *idtoken.Payload, key string) string {
	value, _ := payload.Claims[key].(string)

	return value
}

func claimBool(payload *idtoken.Payload, key string) bool {
	value, _ := payload.Claims[key].(bool)

	return value
}
