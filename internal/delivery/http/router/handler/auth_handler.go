package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"conectar/config"
	"conectar/internal/delivery/http/middleware"
	"conectar/internal/delivery/http/response"
	"conectar/internal/domain/entity"
	"conectar/internal/domain/service"
	"conectar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RefreshInput carries the refresh token when the client presents it in the
// request body instead of the Authorization header.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// GoogleTokenInput carries a client-side Google ID token.
type GoogleTokenInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	authUc      usecase.AuthUsecase
	tokenSvc    service.TokenService
	oauthCode   service.OAuthCodeService
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(
	authUc usecase.AuthUsecase,
	tokenSvc service.TokenService,
	oauthCode service.OAuthCodeService,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthHandler {
	frontendURL := ""
	if cfg.Frontend != nil {
		frontendURL = cfg.Frontend.URL
	}

	return &AuthHandler{
		authUc:      authUc,
		tokenSvc:    tokenSvc,
		oauthCode:   oauthCode,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Login handles the credential login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	pair, err := h.authUc.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, pair, "Login successful")
}

// Refresh exchanges a valid refresh token for a fresh pair. The client
// presents the refresh token as a bearer Authorization header; a JSON body
// carrying refreshToken is accepted as a fallback. The token's signature
// pins it to the refresh secret; the stored hash comparison happens in the
// use case.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := bearerRefreshToken(c)
	if token == "" {
		var input RefreshInput
		if err := c.Bind(&input); err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
		}
		token = input.RefreshToken
	}
	if token == "" {
		return response.Unauthorized(c, "REFRESH_TOKEN_INVALID", "Missing refresh token")
	}

	claims, err := h.tokenSvc.ValidateRefreshToken(token)
	if err != nil {
		return response.Unauthorized(c, "REFRESH_TOKEN_INVALID", "Invalid refresh token")
	}

	pair, err := h.authUc.Refresh(c.Request().Context(), claims.UserID, token)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, pair, "Token refreshed successfully")
}

func bearerRefreshToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}

	return token
}

// Logout revokes the caller's stored refresh token. Returns 204 regardless
// of how many tokens were outstanding.
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHORIZED", "Authentication required")
	}

	if err := h.authUc.Logout(c.Request().Context(), identity.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

// GoogleLogin initiates the Google Sign-In redirect flow.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	oauthURL := h.oauthCode.BuildAuthorizationURL()

	if c.QueryParam("redirect") == "false" {
		return response.Success(c, http.StatusOK, map[string]string{"url": oauthURL}, "")
	}

	return c.Redirect(http.StatusTemporaryRedirect, oauthURL)
}

// GoogleCallback completes the redirect flow: the code/state pair is
// exchanged and verified, the social account resolved or created, and the
// browser sent back to the frontend with the token pair. Admins land on the
// user management page, everyone else on their profile.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	input := usecase.GoogleCallbackInput{
		Code:  c.QueryParam("code"),
		State: c.QueryParam("state"),
	}

	pair, identity, err := h.authUc.LoginWithGoogle(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	if h.frontendURL == "" {
		return response.Success(c, http.StatusOK, pair, "Login successful")
	}

	return c.Redirect(http.StatusFound, h.frontendRedirect(pair, identity))
}

// GoogleToken handles the client-side flow where the SPA already holds a
// Google ID token and posts it directly.
func (h *AuthHandler) GoogleToken(c echo.Context) error {
	var input GoogleTokenInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid Google token input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	pair, _, err := h.authUc.LoginWithGoogle(c.Request().Context(), &usecase.GoogleCallbackInput{IDToken: input.IDToken})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, pair, "Login successful")
}

func (h *AuthHandler) frontendRedirect(pair *usecase.TokenPair, identity *usecase.Identity) string {
	path := "/profile"
	if identity != nil && identity.Role == entity.RoleAdmin {
		path = "/users"
	}

	params := url.Values{}
	params.Set("accessToken", pair.AccessToken)
	params.Set("refreshToken", pair.RefreshToken)

	return h.frontendURL + path + "?" + params.Encode()
}
