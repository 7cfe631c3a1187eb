package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
	"github.com/user/price-tracker/pkg/utils"
)

// Catalog defines the product and competitor operations offered to the presentation layer.
type Catalog interface {
	CreateProduct(ctx context.Context, name string, yourPrice float64, url string) (*entity.Product, error)
	ListProducts(ctx context.Context) ([]*entity.Product, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateCompetitor(ctx context.Context, productID, url string) (*entity.Competitor, error)
	GetCompetitor(ctx context.Context, id string) (*entity.Competitor, error)
	DeleteCompetitor(ctx context.Context, id string) error
}

type catalogUseCase struct {
	productRepo    repository.ProductRepository
	competitorRepo repository.CompetitorRepository
	extractor      repository.Extractor
	logger         *zap.Logger
}

// NewCatalog creates a new Catalog use case.
func NewCatalog(
	productRepo repository.ProductRepository,
	competitorRepo repository.CompetitorRepository,
	extractor repository.Extractor,
	logger *zap.Logger,
) Catalog {
	return &catalogUseCase{
		productRepo:    productRepo,
		competitorRepo: competitorRepo,
		extractor:      extractor,
		logger:         logger,
	}
}

func (uc *catalogUseCase) CreateProduct(ctx context.Context, name string, yourPrice float64, url string) (*entity.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if math.IsNaN(yourPrice) || math.IsInf(yourPrice, 0) || yourPrice < 0 {
		return nil, fmt.Errorf("%w: price must be a non-negative amount", ErrInvalidInput)
	}

	p := &entity.Product{
		Name:      name,
		YourPrice: yourPrice,
		URL:       strings.TrimSpace(url),
	}
	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	uc.logger.Info("Added product", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (uc *catalogUseCase) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.FindAll(ctx)
}

func (uc *catalogUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return uc.productRepo.FindByID(ctx, id)
}

// DeleteProduct removes the product and its competitors. Unknown ids are ignored.
func (uc *catalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	uc.logger.Info("Deleted product", zap.String("product_id", id))
	return nil
}

// CreateCompetitor extracts the page first and only stores the competitor
// when the extraction succeeds.
func (uc *catalogUseCase) CreateCompetitor(ctx context.Context, productID, url string) (*entity.Competitor, error) {
	url = strings.TrimSpace(url)
	if !utils.IsWebURL(url) {
		return nil, fmt.Errorf("%w: competitor url must be an absolute http(s) address", ErrInvalidInput)
	}

	if _, err := uc.productRepo.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, err)
	}

	extraction, err := uc.extractor.Extract(ctx, url)
	if err != nil {
		uc.logger.Warn("Competitor extraction failed", zap.String("product_id", productID), zap.String("url", url), zap.Error(err))
		return nil, err
	}

	c := &entity.Competitor{
		ProductID:    productID,
		URL:          url,
		Name:         extraction.Name,
		CurrentPrice: extraction.Price,
		LastChecked:  extraction.CheckedAt,
		ImageURL:     extraction.ImageURL,
	}
	if err := uc.competitorRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create competitor: %w", err)
	}

	uc.logger.Info("Added competitor",
		zap.String("competitor_id", c.ID),
		zap.String("product_id", productID),
		zap.String("name", c.Name),
		zap.Float64("price", c.CurrentPrice),
	)
	return c, nil
}

func (uc *catalogUseCase) GetCompetitor(ctx context.Context, id string) (*entity.Competitor, error) {
	return uc.competitorRepo.FindByID(ctx, id)
}

// DeleteCompetitor removes a competitor. Unknown ids are ignored.
func (uc *catalogUseCase) DeleteCompetitor(ctx context.Context, id string) error {
	if err := uc.competitorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete competitor %s: %w", id, err)
	}
	uc.logger.Info("Deleted competitor", zap.String("competitor_id", id))
	return nil
}
