package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
)

// GormCustomerRepository is the GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	db *gorm.DB
}

var _ CustomerRepository = (*GormCustomerRepository)(nil)

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Customer], error) {
	return paginate[domain.Customer](ctx, r.db, "name", q, nil)
}

func (r *GormCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	if err := first(r.db.WithContext(ctx), &customer, "id = ?", id); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(customer).Error, "create customer")
}

func (r *GormCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now()
	return updateColumns(ctx, r.db, customer, customer.ID, "name", "no_telp", "address", "updated_at")
}

func (r *GormCustomerRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, &domain.Customer{}, id)
}
