package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

// List returns every product. An empty catalog is reported as
// domain.ErrCatalogEmpty rather than an empty slice.
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrCatalogEmpty
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, caller *domain.Principal, in ports.ProductInput) (*domain.Product, error) {
	if !domain.CanModifyProducts(caller) {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:  strings.TrimSpace(in.Name),
		Price: in.Price,
		Stock: in.Stock,
		Image: in.Image,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Int64("product_id", p.ID).Str("by", caller.Name).Msg("product created")
	return p, nil
}

// Update overwrites product id. A lost write is never retried: if the
// record disappeared the caller gets domain.ErrProductNotFound, otherwise the
// conflict propagates as a failure.
func (s *ProductService) Update(ctx context.Context, caller *domain.Principal, id int64, in ports.ProductInput) (*domain.Product, error) {
	if !domain.CanModifyProducts(caller) {
		return nil, domain.ErrUnauthenticated
	}
	if in.ID != id {
		return nil, domain.ErrIDMismatch
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:      id,
		Name:    strings.TrimSpace(in.Name),
		Price:   in.Price,
		Stock:   in.Stock,
		Image:   in.Image,
		Version: in.Version,
	}

	err := s.repo.Update(ctx, p)
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		exists, existsErr := s.repo.Exists(ctx, id)
		if existsErr != nil {
			return nil, fmt.Errorf("update product %d: %w", id, existsErr)
		}
		if !exists {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	s.logger.Info().Int64("product_id", id).Str("by", caller.Name).Msg("product updated")
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, caller *domain.Principal, id int64) error {
	if !domain.Authenticated(caller) {
		return domain.ErrUnauthenticated
	}
	if !domain.CanDeleteProducts(caller) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	s.logger.Info().Int64("product_id", id).Str("by", caller.Name).Msg("product deleted")
	return nil
}

func validateProduct(in ports.ProductInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "is required"
	}
	if in.Price < 0 {
		fields["price"] = "must be greater than or equal to 0"
	}
	switch {
	case in.Stock < 0:
		fields["stock"] = "must be greater than or equal to 0"
	case in.Stock > domain.MaxStock:
		fields["stock"] = fmt.Sprintf("must be at most %d", domain.MaxStock)
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
