package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conectar/config"
	"conectar/internal/domain/service"
	"conectar/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthUsecase struct {
	refreshUserID uuid.UUID
	refreshToken  string
	pair          *usecase.TokenPair
}

func (s *stubAuthUsecase) Login(context.Context, *usecase.LoginInput) (*usecase.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthUsecase) Refresh(_ context.Context, userID uuid.UUID, presentedToken string) (*usecase.TokenPair, error) {
	s.refreshUserID = userID
	s.refreshToken = presentedToken

	return s.pair, nil
}

func (s *stubAuthUsecase) Logout(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

func (s *stubAuthUsecase) ResolveIdentity(context.Context, uuid.UUID) (*usecase.Identity, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthUsecase) LoginWithGoogle(context.Context, *usecase.GoogleCallbackInput) (*usecase.TokenPair, *usecase.Identity, error) {
	return nil, nil, errors.New("not implemented")
}

// stubRefreshTokenService accepts exactly one token string.
type stubRefreshTokenService struct {
	valid  string
	userID uuid.UUID
}

func (s *stubRefreshTokenService) GenerateTokens(uuid.UUID) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (s *stubRefreshTokenService) ValidateAccessToken(string) (*service.Claims, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRefreshTokenService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	if tokenString != s.valid {
		return nil, errors.New("invalid token")
	}

	return &service.Claims{UserID: s.userID, Type: "refresh"}, nil
}

type stubCodeService struct{}

func (stubCodeService) BuildAuthorizationURL() string {
	return "https://accounts.example.com/authorize"
}

func (stubCodeService) ExchangeCode(context.Context, string, string) (*service.OAuthUser, error) {
	return nil, errors.New("not implemented")
}

func newAuthHandlerForTest(userID uuid.UUID) (*AuthHandler, *stubAuthUsecase) {
	authUc := &stubAuthUsecase{
		pair: &usecase.TokenPair{ID: userID, AccessToken: "new-access", RefreshToken: "new-refresh"},
	}
	handler := NewAuthHandler(
		authUc,
		&stubRefreshTokenService{valid: "good-refresh-token", userID: userID},
		stubCodeService{},
		&config.Config{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return handler, authUc
}

func TestAuthHandler_Refresh_BearerHeader(t *testing.T) {
	userID := uuid.New()
	handler, authUc := newAuthHandlerForTest(userID)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer good-refresh-token")
	rec := httptest.NewRecorder()

	err := handler.Refresh(e.NewContext(req, rec))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, authUc.refreshUserID)
	assert.Equal(t, "good-refresh-token", authUc.refreshToken)
	assert.Contains(t, rec.Body.String(), "new-refresh")
}

func TestAuthHandler_Refresh_BodyFallback(t *testing.T) {
	userID := uuid.New()
	handler, authUc := newAuthHandlerForTest(userID)

	e := echo.New()
	body := strings.NewReader(`{"refreshToken":"good-refresh-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := handler.Refresh(e.NewContext(req, rec))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good-refresh-token", authUc.refreshToken)
}

func TestAuthHandler_Refresh_MissingToken(t *testing.T) {
	handler, _ := newAuthHandlerForTest(uuid.New())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()

	err := handler.Refresh(e.NewContext(req, rec))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "REFRESH_TOKEN_INVALID")
}

func TestAuthHandler_Refresh_RejectedSignature(t *testing.T) {
	handler, _ := newAuthHandlerForTest(uuid.New())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer tampered-token")
	rec := httptest.NewRecorder()

	err := handler.Refresh(e.NewContext(req, rec))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
