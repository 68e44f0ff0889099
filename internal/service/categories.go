package service

import (
	"context"
	"strings"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
	"github.com/talkincode/toughpos/internal/storage"
)

type CategoryInput struct {
	Name        string
	Description string
}

func (in CategoryInput) normalize() CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	assets     assetKeeper
}

func NewCategoryService(categories repository.CategoryRepository, products repository.ProductRepository,
	refs repository.ImageRefs, store storage.Store) *CategoryService {
	return &CategoryService{
		categories: categories,
		products:   products,
		assets:     assetKeeper{store: store, refs: refs},
	}
}

func (s *CategoryService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Category], error) {
	return s.categories.List(ctx, q)
}

func (s *CategoryService) All(ctx context.Context) ([]domain.Category, error) {
	return s.categories.All(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Validate returns the rejected fields of a write; id is 0 on create.
func (s *CategoryService) Validate(_ context.Context, id int64, _ CategoryInput, img *Upload) ([]domain.FieldError, error) {
	return checkImage(img, id == 0), nil
}

func (s *CategoryService) check(ctx context.Context, id int64, in CategoryInput, img *Upload) error {
	errs, err := s.Validate(ctx, id, in, img)
	if err != nil {
		return err
	}
	return domain.NewValidationError(errs...)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput, img *Upload) (*domain.Category, error) {
	in = in.normalize()
	if err := s.check(ctx, 0, in, img); err != nil {
		return nil, err
	}
	image, err := s.assets.put(ctx, img)
	if err != nil {
		return nil, err
	}
	category := &domain.Category{
		Name:        in.Name,
		Description: in.Description,
		Image:       image,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update changes the scalar fields and, when img is given, replaces the image.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput, img *Upload) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := s.check(ctx, id, in, img); err != nil {
		return nil, err
	}
	if img != nil {
		image, err := s.assets.swap(ctx, category.Image, img)
		if err != nil {
			return nil, err
		}
		category.Image = image
	}
	category.Name = in.Name
	category.Description = in.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return s.categories.GetByID(ctx, id)
}

// Delete refuses categories that still have products.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.assets.release(ctx, category.Image, 0)
	return nil
}
