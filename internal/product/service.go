package product

import (
	"context"
	"errors"

	"papeleria-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines the business logic for the product catalog.
type Service interface {
	GetProduct(ctx context.Context, id uint) (*Product, error)
	GetProducts(ctx context.Context, opts ProductQueryOptions) ([]*Product, error)
	CreateProduct(ctx context.Context, input NewProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetProducts(ctx context.Context, opts ProductQueryOptions) ([]*Product, error) {
	return s.repo.GetList(ctx, opts)
}

func (s *service) CreateProduct(ctx context.Context, input NewProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
		zap.String("name", input.Name),
	)

	if input.Name == "" {
		return nil, errors.New("product name is required")
	}
	if input.Price < 0 || input.WholesalePrice < 0 {
		return nil, errors.New("price must not be negative")
	}

	p, err := s.repo.Create(ctx, input)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uint, input UpdateProductInput) (*Product, error) {
	if input.Price != nil && *input.Price < 0 {
		return nil, errors.New("price must not be negative")
	}
	if input.WholesalePrice != nil && *input.WholesalePrice < 0 {
		return nil, errors.New("price must not be negative")
	}

	return s.repo.Update(ctx, id, input)
}

func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
