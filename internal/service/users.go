package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
)

// UserInput is the writable part of a user. A blank Password on update keeps
// the stored hash.
type UserInput struct {
	Name     string
	Email    string
	Password string
}

func (in UserInput) normalize() UserInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

// HashPassword bcrypt-hashes a plain password with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.User], error) {
	return s.users.List(ctx, q)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Validate checks email uniqueness; id is 0 on create.
func (s *UserService) Validate(ctx context.Context, id int64, in UserInput) ([]domain.FieldError, error) {
	in = in.normalize()
	var errs []domain.FieldError
	if in.Email != "" {
		taken, err := s.users.EmailTaken(ctx, in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, domain.FieldError{Field: "email", Message: "Email already exists"})
		}
	}
	return errs, nil
}

func (s *UserService) check(ctx context.Context, id int64, in UserInput) error {
	errs, err := s.Validate(ctx, id, in)
	if err != nil {
		return err
	}
	return domain.NewValidationError(errs...)
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	in = in.normalize()
	if err := s.check(ctx, 0, in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "password", Message: "Password is required"})
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := s.check(ctx, id, in); err != nil {
		return nil, err
	}
	user.Name = in.Name
	user.Email = in.Email
	if in.Password != "" {
		if user.Password, err = HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
