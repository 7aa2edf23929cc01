package service

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/blocklist"
	"github.com/velotir/starship_registry/internal/hash"
	"github.com/velotir/starship_registry/internal/logging"
	"github.com/velotir/starship_registry/internal/models"
	"github.com/velotir/starship_registry/internal/tokens"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRevokedToken       = errors.New("revoked token")
	ErrUnknownUser        = errors.New("unknown user")
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService struct {
	DB        *gorm.DB
	Issuer    *tokens.Issuer
	Blocklist *blocklist.Store
}

// Login checks the credentials and on success issues an independent
// access/refresh pair. Unknown username and wrong password are deliberately
// the same outcome so the response never reveals which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	var user models.User
	if err := s.DB.WithContext(ctx).Where("name = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	subject := strconv.FormatUint(uint64(user.ID), 10)
	access, err := s.Issuer.IssueAccess(subject)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign access token", "error", err)
		return nil, err
	}
	refresh, err := s.Issuer.IssueRefresh(subject)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign refresh token", "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate admits or rejects a bearer token: signature and type, then
// expiry, then the blocklist. The blocklist lookup runs on every protected
// request so a logged-out token dies immediately, not at natural expiry.
func (s *AuthService) Authenticate(ctx context.Context, raw, typ string) (*tokens.Claims, error) {
	claims, err := s.Issuer.Parse(raw, typ)
	if err != nil {
		return nil, err
	}
	revoked, err := s.Blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Refresh mints a new access token for the subject of an already
// authenticated refresh token. The refresh token is not rotated or revoked;
// it stays valid until its own expiry or an explicit logout.
func (s *AuthService) Refresh(ctx context.Context, claims *tokens.Claims) (string, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return "", ErrUnknownUser
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUnknownUser
		}
		return "", err
	}

	return s.Issuer.IssueAccess(claims.Subject)
}

// Logout revokes exactly the presented token. The sibling of the pair is
// untouched: logging out an access token leaves its refresh token valid,
// and vice versa.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if err := s.Blocklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		l.Error("logout_failed", "error", err)
		return err
	}
	l.Info("token_revoked", "typ", claims.TokenType)
	return nil
}
