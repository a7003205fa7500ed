package ports

import (
	"context"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	ID      int64
	Name    string
	Price   float64
	Stock   int
	Image   string
	Version int64
}

// ProductService defines use-case operations for the catalog. Mutating
// operations receive the caller's principal (nil when anonymous).
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, caller *domain.Principal, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, caller *domain.Principal, id int64, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, caller *domain.Principal, id int64) error
}
