package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the fixed claim set every token carries: subject (user id),
// a unique jti, issued-at, expiry, and the access/refresh discriminator.
type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 tokens. Secrets and TTLs are loaded once
// at startup and never change for the life of the process.
type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func (i *Issuer) IssueAccess(subject string) (string, error) {
	return i.sign(subject, TypeAccess, i.AccessSecret, i.AccessTTL)
}

func (i *Issuer) IssueRefresh(subject string) (string, error) {
	return i.sign(subject, TypeRefresh, i.RefreshSecret, i.RefreshTTL)
}

func (i *Issuer) sign(subject, typ string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (i *Issuer) secretFor(typ string) []byte {
	if typ == TypeRefresh {
		return i.RefreshSecret
	}
	return i.AccessSecret
}

// Parse verifies signature and expiry against the secret for typ and checks
// the typ claim. The distinction between ErrInvalidToken and ErrExpiredToken
// is internal only; the HTTP boundary collapses both to a 401.
func (i *Issuer) Parse(raw, typ string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.secretFor(typ), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tkn.Valid || claims.TokenType != typ {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
