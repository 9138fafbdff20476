package google

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"conectar/internal/domain/entity"
	domainerrors "conectar/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newVerifierForTest(validate idTokenValidator) *AuthService {
	return &AuthService{
		clientID: "client-id",
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: validate,
	}
}

func validPayload() *idtoken.Payload {
	return &idtoken.Payload{
		Subject: "google-subject-1",
		Claims: map[string]any{
			"email":          "alice@example.com",
			"email_verified": true,
			"name":           "Alice",
			"picture":        "https://example.com/alice.png",
		},
	}
}

func TestAuthService_VerifyIDToken_MapsClaims(t *testing.T) {
	var gotAudience string
	verifier := newVerifierForTest(func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
		gotAudience = audience

		return validPayload(), nil
	})

	user, err := verifier.VerifyIDToken(context.Background(), "raw-token")

	require.NoError(t, err)
	assert.Equal(t, "client-id", gotAudience)
	assert.Equal(t, "google-subject-1", user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "https://example.com/alice.png", user.AvatarURL)
	assert.Equal(t, entity.ProviderTypeGoogle, user.Provider)
}

func TestAuthService_VerifyIDToken_RejectsInvalidToken(t *testing.T) {
	verifier := newVerifierForTest(func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("signature mismatch")
	})

	user, err := verifier.VerifyIDToken(context.Background(), "raw-token")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrOAuthTokenInvalid)
}

func TestAuthService_VerifyIDToken_RejectsMissingEmail(t *testing.T) {
	payload := validPayload()
	delete(payload.Claims, "email")
	verifier := newVerifierForTest(func(context.Context, string, string) (*idtoken.Payload, error) {
		return payload, nil
	})

	user, err := verifier.VerifyIDToken(context.Background(), "raw-token")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrOAuthTokenInvalid)
}

func TestAuthService_VerifyIDToken_RejectsUnverifiedEmail(t *testing.T) {
	payload := validPayload()
	payload.Claims["email_verified"] = false
	verifier := newVerifierForTest(func(context.Context, string, string) (*idtoken.Payload, error) {
		return payload, nil
	})

	user, err := verifier.VerifyIDToken(context.Background(), "raw-token")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrOAuthTokenInvalid)
}
