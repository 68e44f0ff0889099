package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
)

// GormImageRefs looks up blob paths held by categories and products
type GormImageRefs struct {
	db *gorm.DB
}

var _ ImageRefs = (*GormImageRefs)(nil)

func NewGormImageRefs(db *gorm.DB) *GormImageRefs {
	return &GormImageRefs{db: db}
}

// CountImageRefs counts category and product rows whose image is path
func (r *GormImageRefs) CountImageRefs(ctx context.Context, path string) (int64, error) {
	var categories, products int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("image = ?", path).Count(&categories).Error; err != nil {
		return 0, errors.Wrap(err, "count category images")
	}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("image = ?", path).Count(&products).Error; err != nil {
		return 0, errors.Wrap(err, "count product images")
	}
	return categories + products, nil
}

// ReferencedImages returns every non-empty image path held by a category or product
func (r *GormImageRefs) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	for _, model := range []interface{}{&domain.Category{}, &domain.Product{}} {
		var paths []string
		if err := r.db.WithContext(ctx).Model(model).Where("image <> ''").Distinct().Pluck("image", &paths).Error; err != nil {
			return nil, errors.Wrap(err, "query image refs")
		}
		for _, p := range paths {
			refs[p] = struct{}{}
		}
	}
	return refs, nil
}
