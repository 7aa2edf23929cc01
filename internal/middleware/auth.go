package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velotir/starship_registry/internal/service"
	"github.com/velotir/starship_registry/internal/tokens"
)

const (
	CtxClaims = "claims"
	CtxUserID = "user_id"
)

type TokenAuth struct {
	Svc *service.AuthService
}

func NewTokenAuth(svc *service.AuthService) *TokenAuth {
	return &TokenAuth{Svc: svc}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (m *TokenAuth) require(typ string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := m.Svc.Authenticate(c.Request().Context(), raw, typ)
			if err != nil {
				// invalid, expired and revoked all collapse to the same 401
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(CtxClaims, claims)
			c.Set(CtxUserID, claims.Subject)
			return next(c)
		}
	}
}

func (m *TokenAuth) RequireAccess() echo.MiddlewareFunc {
	return m.require(tokens.TypeAccess)
}

func (m *TokenAuth) RequireRefresh() echo.MiddlewareFunc {
	return m.require(tokens.TypeRefresh)
}
