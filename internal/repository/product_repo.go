package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
)

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

var _ ProductRepository = (*GormProductRepository)(nil)

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// withCategory joins the category summary (id and name) into each product
func withCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name")
	})
}

func (r *GormProductRepository) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Product], error) {
	return paginate[domain.Product](ctx, r.db, "title", q, withCategory)
}

func (r *GormProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	err := withCategory(r.db.WithContext(ctx)).Order("id DESC").Find(&products).Error
	return products, errors.Wrap(err, "query products")
}

func (r *GormProductRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	err := withCategory(r.db.WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Order("id DESC").
		Find(&products).Error
	return products, errors.Wrap(err, "query products by category")
}

func (r *GormProductRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, errors.Wrap(err, "count products by category")
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := first(withCategory(r.db.WithContext(ctx)), &product, "id = ?", id); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	var product domain.Product
	if err := first(withCategory(r.db.WithContext(ctx)), &product, "barcode = ?", strings.TrimSpace(barcode)); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) BarcodeTaken(ctx context.Context, barcode string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("barcode = ? AND id <> ?", strings.TrimSpace(barcode), excludeID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check barcode")
	}
	return count > 0, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	err := r.db.WithContext(ctx).Omit("Category").Create(product).Error
	return errors.Wrap(err, "create product")
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()
	return updateColumns(ctx, r.db, product, product.ID,
		"barcode", "title", "description", "buy_price", "sell_price", "stock", "image", "category_id", "updated_at")
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &domain.Product{}, id)
}
