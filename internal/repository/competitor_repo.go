package repository

import (
	"context"
	"time"

	"github.com/user/price-tracker/internal/entity"
)

// CompetitorRepository defines the interface for storing and refreshing competitor listings.
type CompetitorRepository interface {
	// Create stores a new competitor, assigning its ID. It returns ErrNotFound
	// when the owning product does not exist.
	Create(ctx context.Context, competitor *entity.Competitor) error
	// FindAll returns every stored competitor.
	FindAll(ctx context.Context) ([]*entity.Competitor, error)
	// FindByID returns a single competitor, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*entity.Competitor, error)
	// UpdatePrice writes current_price and last_checked together.
	UpdatePrice(ctx context.Context, id string, price float64, checkedAt time.Time) error
	// Delete removes a competitor. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}
