package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/blocklist"
	"github.com/velotir/starship_registry/internal/handlers"
	"github.com/velotir/starship_registry/internal/hash"
	"github.com/velotir/starship_registry/internal/middleware"
	"github.com/velotir/starship_registry/internal/models"
	"github.com/velotir/starship_registry/internal/service"
	"github.com/velotir/starship_registry/internal/tokens"
	httpserver "github.com/velotir/starship_registry/internal/transport/http"
)

type testEnv struct {
	t      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Issuer *tokens.Issuer
	Svc    *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Ship{}, &models.TokenBlocklist{}))

	issuer := &tokens.Issuer{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
	svc := &service.AuthService{
		DB:        db,
		Issuer:    issuer,
		Blocklist: &blocklist.Store{DB: db},
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Auth:      &handlers.AuthHandler{Svc: svc},
		Users:     &handlers.UserHandler{DB: db},
		Ships:     &handlers.ShipHandler{DB: db, Index: "ships"},
		TokenAuth: middleware.NewTokenAuth(svc),
	})

	return &testEnv{t: t, E: e, DB: db, Issuer: issuer, Svc: svc}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createUser(name, password string) models.User {
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.t, err)
	user := models.User{Name: name, Password: pwHash}
	require.NoError(env.t, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) login(name, password string) (access, refresh string) {
	rec := env.do("POST", "/auth/login", map[string]string{
		"username": name,
		"password": password,
	}, "")
	require.Equal(env.t, 200, rec.Code, "login failed: %s", rec.Body.String())

	var resp map[string]string
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.t, resp["access_token"])
	require.NotEmpty(env.t, resp["refresh_token"])
	return resp["access_token"], resp["refresh_token"]
}
