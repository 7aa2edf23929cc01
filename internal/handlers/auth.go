package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velotir/starship_registry/internal/logging"
	"github.com/velotir/starship_registry/internal/middleware"
	"github.com/velotir/starship_registry/internal/mykafka"
	"github.com/velotir/starship_registry/internal/service"
	"github.com/velotir/starship_registry/internal/tokens"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return errorResponse(c, http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "username or password missing")
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401)
			return errorResponse(c, http.StatusUnauthorized, "username or password invalid")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	publish(c, h.Producer, "user_events", req.Username, map[string]any{
		"type":     "user_logged_in",
		"username": req.Username,
	})

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	claims, _ := c.Get(middleware.CtxClaims).(*tokens.Claims)
	if claims == nil {
		return errorResponse(c, http.StatusUnauthorized, "invalid or expired token")
	}

	access, err := h.Svc.Refresh(ctx, claims)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			l.Warn("refresh_failed", "status", 401, "reason", "unknown user")
			return errorResponse(c, http.StatusUnauthorized, "unknown user")
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": access})
}

// Logout revokes the presented access token. The refresh token of the pair
// stays valid; revoking it takes a separate call to LogoutRefresh.
func (h *AuthHandler) Logout(c echo.Context) error {
	return h.revoke(c)
}

func (h *AuthHandler) LogoutRefresh(c echo.Context) error {
	return h.revoke(c)
}

func (h *AuthHandler) revoke(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	claims, _ := c.Get(middleware.CtxClaims).(*tokens.Claims)
	if claims == nil {
		return errorResponse(c, http.StatusUnauthorized, "invalid or expired token")
	}

	if err := h.Svc.Logout(ctx, claims); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return errorResponse(c, http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "successfully logged out"})
}
