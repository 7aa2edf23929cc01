package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", "secret123")

	access, refresh := env.login("alice", "secret123")
	assert.NotEqual(t, access, refresh)
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do("POST", "/auth/login", map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do("POST", "/auth/login", map[string]string{"password": "secret123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_InvalidCredentials_NoUsernameLeak(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", "secret123")

	recWrongPass := env.do("POST", "/auth/login", map[string]string{
		"username": "alice", "password": "wrongpass",
	}, "")
	recUnknown := env.do("POST", "/auth/login", map[string]string{
		"username": "nobody", "password": "secret123",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	// identical body for both causes, so responses never reveal whether
	// the username exists
	assert.JSONEq(t, recWrongPass.Body.String(), recUnknown.Body.String())
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", "secret123")
	_, refresh := env.login("alice", "secret123")

	rec := env.do("POST", "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])

	// the new access token authorizes protected requests
	recShip := env.do("POST", "/api/ships", map[string]any{
		"model": "T-65B X-wing", "ship_class": "Starfighter",
	}, resp["access_token"])
	assert.Equal(t, http.StatusCreated, recShip.Code)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", "secret123")
	access, _ := env.login("alice", "secret123")

	rec := env.do("POST", "/auth/refresh", nil, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("alice", "secret123")
	_, refresh := env.login("alice", "secret123")

	require.NoError(t, env.DB.Delete(&user).Error)

	rec := env.do("POST", "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", "secret123")
	access, refresh := env.login("alice", "secret123")

	// the fresh access token works
	rec := env.do("POST", "/api/ships", map[string]any{
		"model": "YT-1300", "ship_class": "Light freighter",
	}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do("DELETE", "/auth/logout", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "successfully logged out", resp["message"])

	// the same access token is now rejected despite its remaining TTL
	rec = env.do("POST", "/api/ships", map[string]any{
		"model": "YT-1300", "ship_class": "Light freighter",
	}, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the sibling refresh token was not revoked
	rec = env.do("POST", "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout2_RevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("alice", "secret123")
	access, refresh := env.login("alice", "secret123")

	rec := env.do("DELETE", "/auth/logout2", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do("POST", "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the sibling access token was not revoked
	rec = env.do("POST", "/api/ships", map[string]any{
		"model": "TIE/ln", "ship_class": "Starfighter",
	}, access)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestProtectedRoute_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	expired := *env.Issuer
	expired.AccessTTL = -time.Minute
	raw, err := expired.IssueAccess("1")
	require.NoError(t, err)

	rec := env.do("POST", "/api/ships", map[string]any{
		"model": "TIE/ln", "ship_class": "Starfighter",
	}, raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoute_MissingOrGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do("POST", "/api/ships", map[string]any{
		"model": "TIE/ln", "ship_class": "Starfighter",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do("POST", "/api/ships", map[string]any{
		"model": "TIE/ln", "ship_class": "Starfighter",
	}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
