// Package auth issues and validates the signed bearer tokens used by the admin api.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = time.Hour

var (
	// ErrTokenMissing is returned when the request carries no token.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenInvalid is returned for a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// SessionFlagger persists the best-effort "logged in" flag of a user.
type SessionFlagger interface {
	SetLoggedIn(ctx context.Context, id int64, loggedIn bool) error
}

// Claims carried by every token. ID is the user id.
type Claims struct {
	ID int64 `json:"id"`
	jwt.RegisteredClaims
}

// TokenService signs tokens with one process-wide secret and keeps the
// user session flag in step with issuance, logout and observed expiry.
// The flag is a cache; the token is the authority. A token that expires
// without being presented again leaves the flag set until the next
// login or logout.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	flags  SessionFlagger
	now    func() time.Time
}

// NewTokenService panics on an empty secret: a missing secret is a startup
// misconfiguration that config.Validate reports before this is reached.
func NewTokenService(secret string, flags SessionFlagger) *TokenService {
	if secret == "" {
		panic("auth: empty signing secret")
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    TokenTTL,
		flags:  flags,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for issuance and expiry checks.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue signs a token for userID and marks the user as logged in.
func (s *TokenService) Issue(ctx context.Context, userID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.flags.SetLoggedIn(ctx, userID, true); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate checks the signature, then the expiry, and returns the user id.
// An expired token clears the user's session flag before ErrTokenExpired is
// returned; an invalid token has no side effect.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrTokenMissing
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return 0, ErrTokenInvalid
	}

	if !claims.VerifyExpiresAt(s.now(), true) {
		if err := s.flags.SetLoggedIn(ctx, claims.ID, false); err != nil {
			zap.L().Warn("failed to clear session flag of expired token",
				zap.Int64("user_id", claims.ID), zap.Error(err))
		}
		return 0, ErrTokenExpired
	}
	if claims.ID <= 0 {
		return 0, ErrTokenInvalid
	}
	return claims.ID, nil
}

// Revoke clears the session flag (logout). The token itself stays valid
// until it expires.
func (s *TokenService) Revoke(ctx context.Context, userID int64) error {
	return s.flags.SetLoggedIn(ctx, userID, false)
}
