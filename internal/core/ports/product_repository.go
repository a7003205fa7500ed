package ports

import (
	"context"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	// Create assigns ID, Version and timestamps on p.
	Create(ctx context.Context, p *domain.Product) error
	// Update overwrites the record with p.ID. When p.Version is non-zero the
	// write only applies if the stored version still matches. Returns
	// domain.ErrConcurrencyConflict when no row was written.
	Update(ctx context.Context, p *domain.Product) error
	Exists(ctx context.Context, id int64) (bool, error)
	// Delete returns domain.ErrProductNotFound when nothing was removed.
	Delete(ctx context.Context, id int64) error
}
