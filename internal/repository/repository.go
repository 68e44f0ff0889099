package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkincode/toughpos/internal/domain"
)

// UserRepository interface for user data access
type UserRepository interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.User], error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// EmailTaken reports whether another user (id != excludeID) owns email
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	SetLoggedIn(ctx context.Context, id int64, loggedIn bool) error
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository interface for category data access
type CategoryRepository interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Category], error)
	All(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
}

// ProductRepository interface for product data access.
// Returned products carry their Category summary.
type ProductRepository interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Product], error)
	All(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	// BarcodeTaken reports whether another product (id != excludeID) owns barcode
	BarcodeTaken(ctx context.Context, barcode string, excludeID int64) (bool, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// CustomerRepository interface for customer data access
type CustomerRepository interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Customer], error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id int64) error
}

// ImageRefs answers which blob paths are still referenced by rows.
type ImageRefs interface {
	CountImageRefs(ctx context.Context, path string) (int64, error)
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}

// searchScope applies a case-insensitive substring match on column.
func searchScope(db *gorm.DB, column, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return db
	}
	pattern := "%" + escapeLike(term) + "%"
	if strings.EqualFold(db.Name(), "postgres") {
		return db.Where(column+" ILIKE ? ESCAPE '\\'", pattern)
	}
	return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", strings.ToLower(pattern))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// paginate counts and fetches one page of T filtered by search on column,
// newest id first. preload is applied to the page query only.
func paginate[T any](ctx context.Context, db *gorm.DB, column string, q domain.ListQuery, preload func(*gorm.DB) *gorm.DB) (*domain.Page[T], error) {
	q = q.Normalize()
	base := func() *gorm.DB {
		return searchScope(db.WithContext(ctx).Model(new(T)), column, q.Search)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count rows")
	}

	items := make([]T, 0)
	query := base()
	if preload != nil {
		query = preload(query)
	}
	if err := query.Order("id DESC").Offset(q.Offset()).Limit(q.PerPage).Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "query rows")
	}
	return &domain.Page[T]{Items: items, Pagination: domain.NewPagination(q, total)}, nil
}

// first loads a single row and maps gorm's not-found into domain.ErrNotFound.
func first(db *gorm.DB, dest interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// deleteByID removes one row and reports ErrNotFound when nothing was deleted.
func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id int64) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete row")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// updateColumns writes the given columns of model, zero values included.
func updateColumns(ctx context.Context, db *gorm.DB, model interface{}, id int64, columns ...string) error {
	res := db.WithContext(ctx).Model(model).Where("id = ?", id).
		Select(columns).Omit(clause.Associations).Updates(model)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update row")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
