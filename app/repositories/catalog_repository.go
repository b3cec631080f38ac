package repositories

import (
	"context"
	"net/url"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// CatalogRepository covers categories and subscription plans.
type CatalogRepository struct {
	api *http.Client
}

func NewCatalogRepository(api *http.Client) *CatalogRepository {
	return &CatalogRepository{api: api}
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var out list[models.Category, *models.Category]
	err := decode(ctx, r.api.Get("/category"), &out)
	return out, err
}

func (r *CatalogRepository) Subcategories(ctx context.Context, categoryID models.ID) ([]models.Subcategory, error) {
	var out list[models.Subcategory, *models.Subcategory]
	err := decode(ctx, r.api.Get("/category/%s/subcategories", url.PathEscape(categoryID.String())), &out)
	return out, err
}

func (r *CatalogRepository) Subscriptions(ctx context.Context) ([]models.Subscription, error) {
	var out list[models.Subscription, *models.Subscription]
	err := decode(ctx, r.api.Get("/subscription/"), &out)
	return out, err
}
