package repositories

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// OrderQuery is the parameter tuple of an order list request.
type OrderQuery struct {
	Page   int
	Limit  int
	Status models.StatusFilter
	Search string
}

// OrderRepository covers /orders/*.
type OrderRepository struct {
	api *http.Client
}

func NewOrderRepository(api *http.Client) *OrderRepository {
	return &OrderRepository{api: api}
}

// ListByVendor fetches one page of a vendor's orders.
func (r *OrderRepository) ListByVendor(ctx context.Context, vendorID models.ID, q OrderQuery) (*models.OrderPage, error) {
	req := r.api.Get("/orders/vendor/%s", url.PathEscape(vendorID.String()))
	if q.Page > 0 {
		req.Query("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		req.Query("limit", strconv.Itoa(q.Limit))
	}
	if s, ok := q.Status.Status(); ok {
		req.Query("status", string(s))
	}
	req.Query("search", strings.TrimSpace(q.Search))

	var page models.OrderPage
	if err := decode(ctx, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *OrderRepository) ByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := decode(ctx, r.api.Get("/orders/%d", id), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus asks the server to move an order to status and returns the
// order as the server now has it.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	var o models.Order
	err := decode(ctx, r.api.Patch("/orders/%d/status", id).
		Body(map[string]string{"status": string(status)}), &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Stats is the server-side aggregate across all of a vendor's orders.
func (r *OrderRepository) Stats(ctx context.Context, vendorID models.ID) (*models.VendorStats, error) {
	var s models.VendorStats
	if err := decode(ctx, r.api.Get("/orders/vendor/%s/stats", url.PathEscape(vendorID.String())), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
