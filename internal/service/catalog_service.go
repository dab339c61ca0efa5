package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
	"github.com/wearvault/storefront-service/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
)

type CatalogService struct {
	products ProductStore
	logger   *zap.Logger
}

func NewCatalogService(products ProductStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   logger,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	existing, _ := s.products.GetProduct(ctx, req.ProductID)
	if existing != nil {
		return nil, ErrProductExists
	}

	now := time.Now()
	product := &domain.Product{
		ProductID:    req.ProductID,
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		Image:        req.Image,
		BuyPrice:     req.BuyPrice,
		RentPrice:    req.RentPrice,
		Sizes:        req.Sizes,
		IsNew:        req.IsNew,
		IsOnSale:     req.IsOnSale,
		Availability: req.Availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		s.logger.Error("Failed to save product",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created successfully",
		zap.String("product_id", product.ProductID),
		zap.String("brand", product.Brand))

	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns the catalog, seeding the sample collection when
// the store is empty so a fresh deployment serves a browsable shop.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		return products, nil
	}

	seeds := SampleCatalog()
	for i := range seeds {
		if err := s.products.CreateProduct(ctx, &seeds[i]); err != nil {
			s.logger.Error("Failed to seed product",
				zap.String("product_id", seeds[i].ProductID),
				zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("Seeded sample catalog", zap.Int("count", len(seeds)))
	return seeds, nil
}
