package service

import (
	"context"
	"strings"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/repository"
)

type CustomerInput struct {
	Name    string
	NoTelp  string
	Address string
}

type CustomerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Customer], error) {
	return s.customers.List(ctx, q)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{}
	in.apply(customer)
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id int64, in CustomerInput) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(customer)
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return s.customers.GetByID(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	return s.customers.Delete(ctx, id)
}

func (in CustomerInput) apply(c *domain.Customer) {
	c.Name = strings.TrimSpace(in.Name)
	c.NoTelp = strings.TrimSpace(in.NoTelp)
	c.Address = strings.TrimSpace(in.Address)
}
