package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
)

// GormCategoryRepository is the GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

var _ CategoryRepository = (*GormCategoryRepository)(nil)

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Category], error) {
	return paginate[domain.Category](ctx, r.db, "name", q, nil)
}

func (r *GormCategoryRepository) All(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	err := r.db.WithContext(ctx).Order("id DESC").Find(&categories).Error
	return categories, errors.Wrap(err, "query categories")
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var category domain.Category
	if err := first(r.db.WithContext(ctx), &category, "id = ?", id); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(category).Error, "create category")
}

func (r *GormCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	category.UpdatedAt = time.Now()
	return updateColumns(ctx, r.db, category, category.ID, "name", "description", "image", "updated_at")
}

func (r *GormCategoryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &domain.Category{}, id)
}
