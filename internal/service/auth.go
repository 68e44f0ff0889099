package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
)

// TokenIssuer is the part of auth.TokenService used by login and logout.
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, time.Time, error)
	Revoke(ctx context.Context, userID int64) error
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login returns domain.ErrNotFound for an unknown email and
// domain.ErrInvalidCredentials for a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, UserInput{Email: email}.normalize().Email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.IsLoggedIn = true
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokens.Revoke(ctx, userID)
}
