package repository

import (
	"context"

	"github.com/user/price-tracker/internal/entity"
)

// ProductRepository defines the interface for storing and retrieving products.
type ProductRepository interface {
	// Create stores a new product, assigning its ID and CreatedAt.
	Create(ctx context.Context, product *entity.Product) error
	// FindAll returns every product with its competitors.
	FindAll(ctx context.Context) ([]*entity.Product, error)
	// FindByID returns a product with its competitors, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// Delete removes a product and all of its competitors. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}
