package repositories

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// ProductQuery filters GET /products.
type ProductQuery struct {
	VendorID   models.ID
	CategoryID models.ID
	Search     string
	Page       int
	Limit      int
}

// ProductRepository covers /products.
type ProductRepository struct {
	api *http.Client
}

func NewProductRepository(api *http.Client) *ProductRepository {
	return &ProductRepository{api: api}
}

func (r *ProductRepository) List(ctx context.Context, q ProductQuery) (*models.ProductPage, error) {
	req := r.api.Get("/products").
		Query("vendor_id", q.VendorID.String()).
		Query("category_id", q.CategoryID.String()).
		Query("search", q.Search)
	if q.Page > 0 {
		req.Query("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		req.Query("limit", strconv.Itoa(q.Limit))
	}

	var page models.ProductPage
	if err := decode(ctx, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *ProductRepository) ByID(ctx context.Context, id models.ID) (*models.Product, error) {
	var p models.Product
	if err := decode(ctx, r.api.Get("/products/%s", url.PathEscape(id.String())), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create uploads a product with its media as multipart/form-data.
func (r *ProductRepository) Create(ctx context.Context, in models.ProductInput, media []http.File) (*models.Product, error) {
	var p models.Product
	if err := decode(ctx, r.api.Post("/products").Multipart(productFields(in), media), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces the editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, id models.ID, in models.ProductInput) (*models.Product, error) {
	var p models.Product
	if err := decode(ctx, r.api.Put("/products/%s", url.PathEscape(id.String())).Body(in), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id models.ID) error {
	var out Message
	return decode(ctx, r.api.Delete("/products/%s", url.PathEscape(id.String())), &out)
}

func productFields(in models.ProductInput) map[string]string {
	f := map[string]string{
		"name":        in.Name,
		"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
		"stock":       strconv.Itoa(in.Stock),
		"category_id": in.CategoryID,
	}
	if in.Description != "" {
		f["description"] = in.Description
	}
	if in.SubcategoryID != "" {
		f["subcategory_id"] = in.SubcategoryID
	}
	return f
}
