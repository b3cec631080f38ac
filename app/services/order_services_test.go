package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

func order(id int64, st models.OrderStatus, total float64) models.Order {
	return models.Order{ID: id, Status: st, Quantity: 1, TotalAmount: total}
}

func threeOrders() *fakeOrders {
	return newFakeOrders(
		order(1, models.OrderStatusNew, 10),
		order(2, models.OrderStatusProcessing, 20),
		order(3, models.OrderStatusCompleted, 30),
	)
}

func TestAggregatesOverCurrentPage(t *testing.T) {
	wf := services.NewOrderWorkflow(threeOrders(), newCache(), "3", 10)
	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)

	agg := wf.Aggregates()
	assert.Equal(t, models.StatusCounts{All: 3, New: 1, Processing: 1, ReadyToDelivery: 0, Completed: 1}, agg.Counts)
	assert.Equal(t, 60.0, agg.TotalRevenue)
	assert.Equal(t, 20.0, agg.AverageOrderValue)
}

func TestAggregatesEmpty(t *testing.T) {
	wf := services.NewOrderWorkflow(newFakeOrders(), newCache(), "3", 10)
	assert.Equal(t, services.PageAggregates{}, wf.Aggregates())

	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, wf.Aggregates().AverageOrderValue)
}

func TestFetchOrdersIsCachedPerQuery(t *testing.T) {
	api := threeOrders()
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)

	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	_, err = wf.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)

	wf.SetStatusFilter(models.FilterBy(models.OrderStatusNew))
	page, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
	assert.Equal(t, models.FilterBy(models.OrderStatusNew), api.lastQuery.Status)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, int64(1), page.Orders[0].ID)
	assert.False(t, wf.IsLoadingOrders())
}

func TestFilterAndSearchResetPage(t *testing.T) {
	api := newFakeOrders()
	for i := int64(1); i <= 25; i++ {
		api.orders[i] = &models.Order{ID: i, Status: models.OrderStatusNew}
	}
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, wf.NextPage())
	assert.Equal(t, 3, wf.NextPage())
	assert.Equal(t, 3, wf.NextPage(), "clamped to total pages")
	assert.Equal(t, 1, wf.SetPage(-4))
	assert.Equal(t, 1, wf.PrevPage())

	wf.SetPage(2)
	wf.SetSearch("  abebe  ")
	assert.Equal(t, 1, wf.Page())
	assert.Equal(t, "abebe", wf.Query().Search)

	wf.SetPage(2)
	wf.SetStatusFilter(models.StatusFilterNone)
	assert.Equal(t, 1, wf.Page())
}

func TestUpdateStatusLegal(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)

	require.NoError(t, wf.UpdateStatus(ctx, 42, models.OrderStatusProcessing))
	assert.Equal(t, []models.OrderStatus{models.OrderStatusProcessing}, api.updates)
	assert.False(t, wf.IsUpdatingStatus())

	// The list was invalidated and refetched; the new status is visible.
	assert.Equal(t, 2, api.listCalls)
	require.Len(t, wf.CurrentPage().Orders, 1)
	assert.Equal(t, models.OrderStatusProcessing, wf.CurrentPage().Orders[0].Status)

	// The detail entry holds the server copy.
	gets := api.getCalls
	o, err := wf.Order(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, o.Status)
	assert.Equal(t, gets, api.getCalls)
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
	}{
		{models.OrderStatusNew, models.OrderStatusCompleted},
		{models.OrderStatusNew, models.OrderStatusNew},
		{models.OrderStatusProcessing, models.OrderStatusNew},
		{models.OrderStatusCompleted, models.OrderStatusNew},
		{models.OrderStatusReadyToDelivery, models.OrderStatusProcessing},
	}
	for _, c := range cases {
		t.Run(string(c.from)+"->"+string(c.to), func(t *testing.T) {
			api := newFakeOrders(order(42, c.from, 15))
			wf := services.NewOrderWorkflow(api, newCache(), "3", 10)

			err := wf.UpdateStatus(ctx, 42, c.to)
			assert.ErrorIs(t, err, services.ErrIllegalTransition)
			assert.Empty(t, api.updates, "no mutation request")
		})
	}
}

func TestUpdateStatusUnknownTarget(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	assert.ErrorIs(t, wf.UpdateStatus(ctx, 42, "shipped"), models.ErrUnknownStatus)
	assert.Zero(t, api.getCalls)
}

func TestUpdateStatusFailureLeavesCache(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	api.failWith = errors.New("boom")
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)

	err = wf.UpdateStatus(ctx, 42, models.OrderStatusProcessing)
	require.Error(t, err)

	page, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls, "list still served from cache")
	assert.Equal(t, models.OrderStatusNew, page.Orders[0].Status)
}

func TestUpdateStatusReadsCurrentStatusFresh(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	_, err := wf.Order(ctx, 42)
	require.NoError(t, err)

	// Someone else moved the order on; the cached detail still says new.
	api.mu.Lock()
	api.orders[42].Status = models.OrderStatusProcessing
	api.mu.Unlock()

	require.NoError(t, wf.UpdateStatus(ctx, 42, models.OrderStatusReadyToDelivery))
	assert.Equal(t, []models.OrderStatus{models.OrderStatusReadyToDelivery}, api.updates)
}

func TestAdvanceReadsCurrentStatusFresh(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	_, err := wf.Order(ctx, 42)
	require.NoError(t, err)

	api.mu.Lock()
	api.orders[42].Status = models.OrderStatusReadyToDelivery
	api.mu.Unlock()

	next, err := wf.Advance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, next)
}

func TestUpdateStatusConflictDropsDetail(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	api.failWith = &http.APIError{Kind: http.KindBusiness, StatusCode: 409, Message: "Cannot change order status"}
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)

	err := wf.UpdateStatus(ctx, 42, models.OrderStatusProcessing)
	require.Error(t, err)
	assert.True(t, http.IsBusiness(err))

	gets := api.getCalls
	_, err = wf.Order(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, gets+1, api.getCalls, "detail is read again after a conflict")
}

func TestAdvanceWalksTheLifecycle(t *testing.T) {
	api := newFakeOrders(order(42, models.OrderStatusNew, 15))
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)

	for _, want := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusReadyToDelivery,
		models.OrderStatusCompleted,
	} {
		got, err := wf.Advance(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := wf.Advance(ctx, 42)
	assert.ErrorIs(t, err, services.ErrIllegalTransition)
	assert.Len(t, api.updates, 3)
}

func TestStatsCached(t *testing.T) {
	api := threeOrders()
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)
	st, err := wf.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalOrders)
	assert.Equal(t, 1, st.ByStatus[models.OrderStatusNew])
}

func TestRefreshBypassesCache(t *testing.T) {
	api := threeOrders()
	wf := services.NewOrderWorkflow(api, newCache(), "3", 10)

	_, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	page, err := wf.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
	assert.Len(t, page.Orders, 3)
	assert.Same(t, page, wf.CurrentPage())
}
