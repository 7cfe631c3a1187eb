package repository

import (
	"context"

	"github.com/user/price-tracker/internal/entity"
)

// Extractor defines the contract for the external page-extraction service.
type Extractor interface {
	// Extract resolves a competitor page into a name, price and optional image.
	// Any failure is reported as an error wrapping ErrExtractionFailed.
	Extract(ctx context.Context, url string) (*entity.Extraction, error)
}
