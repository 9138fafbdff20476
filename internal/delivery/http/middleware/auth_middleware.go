package middleware

import (
	"strings"

	deliverycontext "conectar/internal/delivery/context"
	"conectar/internal/delivery/http/response"
	"conectar/internal/domain/entity"
	"conectar/internal/domain/service"
	"conectar/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	// ContextKeyIdentity holds the resolved *usecase.Identity.
	ContextKeyIdentity = "identity"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	authUc   usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, authUc usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, authUc: authUc}
}

// Authenticate validates the bearer access token and resolves the caller's
// identity from storage. The role is read from the account on every request,
// not from the token, so role changes take effect immediately.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return response.Unauthorized(c, "UNAUTHORIZED", "Missing or malformed Authorization header")
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Invalid or expired token")
		}

		identity, err := m.authUc.ResolveIdentity(c.Request().Context(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED", "Unknown account")
		}

		c.Set(ContextKeyIdentity, identity)

		// Tag the request-scoped logger with the resolved user id.
		ctx := deliverycontext.WithUserID(c.Request().Context(), identity.ID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRoles is a middleware factory that allows only the listed roles.
// It must be used AFTER the Authenticate middleware. Roles are flat: admin
// routes list RoleAdmin explicitly, shared routes list both.
func (m *AuthMiddleware) RequireRoles(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c)
			if !ok {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: identity missing")
			}

			if !entity.Roles(roles).Contains(identity.Role) {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: insufficient role")
			}

			return next(c)
		}
	}
}

// IdentityFromContext returns the identity stored by Authenticate.
func IdentityFromContext(c echo.Context) (*usecase.Identity, bool) {
	identity, ok := c.Get(ContextKeyIdentity).(*usecase.Identity)

	return identity, ok
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", false
	}

	return tokenString, true
}
