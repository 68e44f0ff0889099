package service

import (
	"context"
	"strings"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/storage"
)

type ProductInput struct {
	Barcode     string
	Title       string
	Description string
	BuyPrice    int64
	SellPrice   int64
	Stock       int64
	CategoryID  int64
}

func (in ProductInput) normalize() ProductInput {
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	assets     assetKeeper
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository,
	refs repository.ImageRefs, store storage.Store) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		assets:     assetKeeper{store: store, refs: refs},
	}
}

func (s *ProductService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Product], error) {
	return s.products.List(ctx, q)
}

func (s *ProductService) All(ctx context.Context) ([]domain.Product, error) {
	return s.products.All(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) ByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	return s.products.ListByCategory(ctx, categoryID)
}

func (s *ProductService) ByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return s.products.GetByBarcode(ctx, barcode)
}

// Validate checks the image, barcode uniqueness and the category reference.
// A product keeping its own barcode on update is not a conflict.
func (s *ProductService) Validate(ctx context.Context, id int64, in ProductInput, img *Upload) ([]domain.FieldError, error) {
	in = in.normalize()
	errs := checkImage(img, id == 0)
	if in.Barcode != "" {
		taken, err := s.products.BarcodeTaken(ctx, in.Barcode, id)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, domain.FieldError{Field: "barcode", Message: "Barcode must be unique"})
		}
	}
	if in.CategoryID > 0 {
		if _, err := s.categories.GetByID(ctx, in.CategoryID); domain.IsNotFound(err) {
			errs = append(errs, domain.FieldError{Field: "category_id", Message: "Category not found"})
		} else if err != nil {
			return nil, err
		}
	}
	return errs, nil
}

func (s *ProductService) check(ctx context.Context, id int64, in ProductInput, img *Upload) error {
	errs, err := s.Validate(ctx, id, in, img)
	if err != nil {
		return err
	}
	return domain.NewValidationError(errs...)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput, img *Upload) (*domain.Product, error) {
	in = in.normalize()
	if err := s.check(ctx, 0, in, img); err != nil {
		return nil, err
	}
	image, err := s.assets.put(ctx, img)
	if err != nil {
		return nil, err
	}
	product := &domain.Product{Image: image}
	in.apply(product)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, product.ID)
}

// Update changes the scalar fields and, when img is given, replaces the image.
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput, img *Upload) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := s.check(ctx, id, in, img); err != nil {
		return nil, err
	}
	if img != nil {
		image, err := s.assets.swap(ctx, product.Image, img)
		if err != nil {
			return nil, err
		}
		product.Image = image
	}
	in.apply(product)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.assets.release(ctx, product.Image, 0)
	return nil
}

func (in ProductInput) apply(p *domain.Product) {
	p.Barcode = in.Barcode
	p.Title = in.Title
	p.Description = in.Description
	p.BuyPrice = in.BuyPrice
	p.SellPrice = in.SellPrice
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.Category = nil
}
