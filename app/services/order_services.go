package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
	"github.com/shashiranjanraj/vendordesk/pkg/metrics"
)

// OrderWorkflow drives one vendor's order list: paging, status filter,
// search, status transitions and the aggregates shown above the list.
//
// It is built from a resolved vendor id; without one no order query can be
// issued. Lists are read through the query cache keyed by the full
// parameter tuple, and a successful transition invalidates every cached
// list of the vendor plus the order's detail entry.
type OrderWorkflow struct {
	orders   OrderAPI
	cache    *cache.Cache
	vendorID models.ID
	limit    int

	mu         sync.Mutex
	page       int
	filter     models.StatusFilter
	search     string
	totalPages int
	current    *models.OrderPage

	loadingOrders  atomic.Int32
	updatingStatus atomic.Int32
}

// NewOrderWorkflow starts at page 1 with no filter. limit <= 0 means 10.
func NewOrderWorkflow(orders OrderAPI, c *cache.Cache, vendorID models.ID, limit int) *OrderWorkflow {
	if limit <= 0 {
		limit = 10
	}
	return &OrderWorkflow{
		orders:   orders,
		cache:    c,
		vendorID: vendorID,
		limit:    limit,
		page:     1,
	}
}

func (w *OrderWorkflow) VendorID() models.ID { return w.vendorID }

// ─── Filter state ────────────────────────────────────────────────────────────

// Query returns the parameter tuple the next FetchOrders will use.
func (w *OrderWorkflow) Query() repositories.OrderQuery {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queryLocked()
}

func (w *OrderWorkflow) queryLocked() repositories.OrderQuery {
	return repositories.OrderQuery{Page: w.page, Limit: w.limit, Status: w.filter, Search: w.search}
}

func (w *OrderWorkflow) Page() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page
}

// SetStatusFilter replaces the filter and returns to page 1.
func (w *OrderWorkflow) SetStatusFilter(f models.StatusFilter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter = f
	w.page = 1
	w.totalPages = 0
}

// SetSearch replaces the search term and returns to page 1.
func (w *OrderWorkflow) SetSearch(term string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.search = strings.TrimSpace(term)
	w.page = 1
	w.totalPages = 0
}

// SetPage moves to page n, clamped to 1 and, once a page has been fetched,
// to the known number of pages.
func (w *OrderWorkflow) SetPage(n int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.totalPages > 0 && n > w.totalPages {
		n = w.totalPages
	}
	if n < 1 {
		n = 1
	}
	w.page = n
	return n
}

func (w *OrderWorkflow) NextPage() int { return w.SetPage(w.Page() + 1) }
func (w *OrderWorkflow) PrevPage() int { return w.SetPage(w.Page() - 1) }

// ─── Reads ───────────────────────────────────────────────────────────────────

func listKey(vendorID models.ID, q repositories.OrderQuery) string {
	return cache.Key("orders", vendorID, q.Page, q.Limit, q.Status.String(), q.Search)
}

func orderKey(id int64) string { return cache.Key("order", id) }

func statsKey(vendorID models.ID) string { return cache.Key("orders", vendorID, "stats") }

// FetchOrders fetches the page described by the current filter state. The
// result becomes the page the aggregates are computed over, unless the
// state changed while the request was in flight.
func (w *OrderWorkflow) FetchOrders(ctx context.Context) (*models.OrderPage, error) {
	q := w.Query()
	page, err := w.FetchOrdersWith(ctx, q)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if w.queryLocked() == q {
		w.current = page
		w.totalPages = page.Pagination.TotalPages
	}
	w.mu.Unlock()
	return page, nil
}

// Refresh drops the vendor's cached lists and stats and refetches the
// current page from the server.
func (w *OrderWorkflow) Refresh(ctx context.Context) (*models.OrderPage, error) {
	w.cache.Invalidate(cache.Prefix("orders", w.vendorID))
	return w.FetchOrders(ctx)
}

// FetchOrdersWith fetches an arbitrary page of this vendor's orders through
// the cache without touching the workflow state.
func (w *OrderWorkflow) FetchOrdersWith(ctx context.Context, q repositories.OrderQuery) (*models.OrderPage, error) {
	if q.Limit <= 0 {
		q.Limit = w.limit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	q.Search = strings.TrimSpace(q.Search)

	w.loadingOrders.Add(1)
	defer w.loadingOrders.Add(-1)

	page, err := cache.Remember(ctx, w.cache, listKey(w.vendorID, q), func(ctx context.Context) (*models.OrderPage, error) {
		return w.orders.ListByVendor(ctx, w.vendorID, q)
	})
	if err != nil {
		return nil, fmt.Errorf("orders: list vendor %s: %w", w.vendorID, err)
	}
	return page, nil
}

// Order returns one order through the detail cache.
func (w *OrderWorkflow) Order(ctx context.Context, id int64) (*models.Order, error) {
	o, err := cache.Remember(ctx, w.cache, orderKey(id), func(ctx context.Context) (*models.Order, error) {
		return w.orders.ByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("orders: get %d: %w", id, err)
	}
	return o, nil
}

// Stats returns the server's totals over the vendor's whole history.
func (w *OrderWorkflow) Stats(ctx context.Context) (*models.VendorStats, error) {
	s, err := cache.Remember(ctx, w.cache, statsKey(w.vendorID), func(ctx context.Context) (*models.VendorStats, error) {
		return w.orders.Stats(ctx, w.vendorID)
	})
	if err != nil {
		return nil, fmt.Errorf("orders: stats vendor %s: %w", w.vendorID, err)
	}
	return s, nil
}

// ─── Transitions ─────────────────────────────────────────────────────────────

// UpdateStatus moves order id to to. The order's current status is read
// fresh from the server and any target other than its single legal next
// status is rejected with ErrIllegalTransition without a mutation request.
// On success the vendor's cached lists and stats are invalidated, the detail
// entry is replaced with the server's copy and the current page is
// refetched. On failure the cached lists are untouched; a business rejection
// drops the detail entry, which no longer reflects the server.
func (w *OrderWorkflow) UpdateStatus(ctx context.Context, id int64, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("orders: update %d: %w %q", id, models.ErrUnknownStatus, to)
	}
	current, err := w.fresh(ctx, id)
	if err != nil {
		return err
	}
	return w.transition(ctx, id, current, to)
}

// Advance moves order id to its single legal next status.
func (w *OrderWorkflow) Advance(ctx context.Context, id int64) (models.OrderStatus, error) {
	o, err := w.fresh(ctx, id)
	if err != nil {
		return "", err
	}
	next, ok := models.NextValidStatus(o.Status)
	if !ok {
		return "", fmt.Errorf("orders: advance %d: %w: %s is final", id, ErrIllegalTransition, o.Status)
	}
	if err := w.transition(ctx, id, o, next); err != nil {
		return "", err
	}
	return next, nil
}

// fresh reads order id past the detail cache and caches the result.
func (w *OrderWorkflow) fresh(ctx context.Context, id int64) (*models.Order, error) {
	w.cache.Forget(orderKey(id))
	return w.Order(ctx, id)
}

func (w *OrderWorkflow) transition(ctx context.Context, id int64, current *models.Order, to models.OrderStatus) error {
	if !models.CanTransition(current.Status, to) {
		metrics.RecordTransition(string(to), "rejected")
		return fmt.Errorf("orders: update %d: %w: %s → %s", id, ErrIllegalTransition, current.Status, to)
	}

	w.updatingStatus.Add(1)
	defer w.updatingStatus.Add(-1)

	updated, err := w.orders.UpdateStatus(ctx, id, to)
	if err != nil {
		metrics.RecordTransition(string(to), "failed")
		if http.IsBusiness(err) {
			w.cache.Forget(orderKey(id))
		}
		return fmt.Errorf("orders: update %d: %w", id, err)
	}
	metrics.RecordTransition(string(to), "ok")

	w.cache.Invalidate(cache.Prefix("orders", w.vendorID))
	w.cache.Forget(orderKey(id))
	if updated != nil && updated.ID == id {
		w.cache.Put(orderKey(id), updated)
	}

	log := logger.WithCtx(ctx)
	log.Info("order status updated", "order_id", id, "from", current.Status, "to", to)

	if _, err := w.FetchOrders(ctx); err != nil {
		log.Warn("orders: refetch after update failed", "error", err)
	}
	return nil
}

// ─── Loading flags ───────────────────────────────────────────────────────────

func (w *OrderWorkflow) IsLoadingOrders() bool  { return w.loadingOrders.Load() > 0 }
func (w *OrderWorkflow) IsUpdatingStatus() bool { return w.updatingStatus.Load() > 0 }

// ─── Aggregates ──────────────────────────────────────────────────────────────

// PageAggregates summarise the orders of one fetched page. They are not
// totals over the vendor's history; use Stats for those.
type PageAggregates struct {
	Counts            models.StatusCounts
	TotalRevenue      float64
	AverageOrderValue float64
}

// CurrentPage returns the last page fetched with the current filter state.
func (w *OrderWorkflow) CurrentPage() *models.OrderPage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Aggregates reduces over the current page only.
func (w *OrderWorkflow) Aggregates() PageAggregates {
	var orders []models.Order
	if p := w.CurrentPage(); p != nil {
		orders = p.Orders
	}
	return Aggregate(orders)
}

// Aggregate computes counts, revenue and average order value of orders.
func Aggregate(orders []models.Order) PageAggregates {
	return PageAggregates{
		Counts:            models.CountStatuses(orders),
		TotalRevenue:      TotalRevenue(orders),
		AverageOrderValue: AverageOrderValue(orders),
	}
}

func TotalRevenue(orders []models.Order) float64 {
	var sum float64
	for _, o := range orders {
		sum += o.TotalAmount
	}
	return sum
}

// AverageOrderValue is 0 for no orders.
func AverageOrderValue(orders []models.Order) float64 {
	if len(orders) == 0 {
		return 0
	}
	return TotalRevenue(orders) / float64(len(orders))
}
