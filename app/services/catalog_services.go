package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
)

// CatalogService serves the reference data products are filed under.
type CatalogService struct {
	api   CatalogAPI
	cache *cache.Cache
}

func NewCatalogService(api CatalogAPI, c *cache.Cache) *CatalogService {
	return &CatalogService{api: api, cache: c}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	out, err := cache.Remember(ctx, s.cache, cache.Key("catalog", "categories"), s.api.Categories)
	if err != nil {
		return nil, fmt.Errorf("catalog: categories: %w", err)
	}
	return out, nil
}

func (s *CatalogService) Subcategories(ctx context.Context, categoryID models.ID) ([]models.Subcategory, error) {
	out, err := cache.Remember(ctx, s.cache, cache.Key("catalog", "subcategories", categoryID), func(ctx context.Context) ([]models.Subcategory, error) {
		return s.api.Subcategories(ctx, categoryID)
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: subcategories of %s: %w", categoryID, err)
	}
	return out, nil
}

func (s *CatalogService) Subscriptions(ctx context.Context) ([]models.Subscription, error) {
	out, err := cache.Remember(ctx, s.cache, cache.Key("catalog", "subscriptions"), s.api.Subscriptions)
	if err != nil {
		return nil, fmt.Errorf("catalog: subscriptions: %w", err)
	}
	return out, nil
}
