package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
)

// GormUserRepository is the GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.User], error) {
	return paginate[domain.User](ctx, r.db, "name", q, nil)
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := first(r.db.WithContext(ctx), &user, "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := first(r.db.WithContext(ctx), &user, "email = ?", strings.TrimSpace(email)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", strings.TrimSpace(email), excludeID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check email")
	}
	return count > 0, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(user).Error, "create user")
}

// Update writes profile fields and the password hash; the session flag is
// only changed through SetLoggedIn.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	return updateColumns(ctx, r.db, user, user.ID, "name", "email", "password", "updated_at")
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &domain.User{}, id)
}

func (r *GormUserRepository) SetLoggedIn(ctx context.Context, id int64, loggedIn bool) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_logged_in", loggedIn)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update session flag")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, errors.Wrap(err, "count users")
}
