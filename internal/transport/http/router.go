package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velotir/starship_registry/internal/handlers"
	"github.com/velotir/starship_registry/internal/middleware"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Ships     *handlers.ShipHandler
	Search    *handlers.SearchHandler
	TokenAuth *middleware.TokenAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	requireAccess := d.TokenAuth.RequireAccess()
	requireRefresh := d.TokenAuth.RequireRefresh()

	auth := e.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh, requireRefresh)
	auth.DELETE("/logout", d.Auth.Logout, requireAccess)
	auth.DELETE("/logout2", d.Auth.LogoutRefresh, requireRefresh)

	api := e.Group("/api")

	api.GET("/ships", d.Ships.GetShips)
	api.GET("/ships/:id", d.Ships.GetShip)
	api.POST("/ships", d.Ships.CreateShip, requireAccess)
	api.PUT("/ships/:id", d.Ships.UpdateShip, requireAccess)
	api.DELETE("/ships/:id", d.Ships.DeleteShip, requireAccess)

	if d.Search != nil {
		api.GET("/ships/search", d.Search.Handler)
	}

	api.GET("/users", d.Users.GetUsers)
	api.GET("/users/:id", d.Users.GetUser)
	api.POST("/users", d.Users.CreateUser)
	api.PUT("/users/:id", d.Users.UpdateUser, requireAccess)
	api.DELETE("/users/:id", d.Users.DeleteUser, requireAccess)
}
