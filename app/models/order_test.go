package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/models"
)

func TestNextTransitionsHasOneForEveryNonTerminalStatus(t *testing.T) {
	for _, s := range models.OrderStatuses {
		next := models.NextTransitions(s)
		if s == models.OrderStatusCompleted {
			assert.Empty(t, next, s)
			continue
		}
		assert.Len(t, next, 1, s)
	}
	assert.Empty(t, models.NextTransitions("cancelled"))
}

func TestTransitionTable(t *testing.T) {
	want := map[models.OrderStatus]models.OrderStatus{
		models.OrderStatusNew:             models.OrderStatusProcessing,
		models.OrderStatusProcessing:      models.OrderStatusReadyToDelivery,
		models.OrderStatusReadyToDelivery: models.OrderStatusCompleted,
	}
	for from, to := range want {
		got, ok := models.NextValidStatus(from)
		assert.True(t, ok)
		assert.Equal(t, to, got)
	}
	_, ok := models.NextValidStatus(models.OrderStatusCompleted)
	assert.False(t, ok)

	assert.True(t, models.CanTransition(models.OrderStatusNew, models.OrderStatusProcessing))
	assert.False(t, models.CanTransition(models.OrderStatusNew, models.OrderStatusCompleted), "skip")
	assert.False(t, models.CanTransition(models.OrderStatusProcessing, models.OrderStatusNew), "backwards")
	assert.False(t, models.CanTransition(models.OrderStatusCompleted, models.OrderStatusCompleted))
}

func TestParseOrderStatus(t *testing.T) {
	for in, want := range map[string]models.OrderStatus{
		"new":               models.OrderStatusNew,
		"Processing":        models.OrderStatusProcessing,
		"ready-to-delivery": models.OrderStatusReadyToDelivery,
		" Ready to delivery": models.OrderStatusReadyToDelivery,
	} {
		got, err := models.ParseOrderStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := models.ParseOrderStatus("procesing")
	assert.ErrorIs(t, err, models.ErrUnknownStatus)
	assert.Contains(t, err.Error(), `did you mean "processing"`)

	_, err = models.ParseOrderStatus("zzzzzzzzzzzzzzzzzzzz")
	assert.ErrorIs(t, err, models.ErrUnknownStatus)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestParseStatusFilter(t *testing.T) {
	f, err := models.ParseStatusFilter("all")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFilterNone, f)
	_, ok := f.Status()
	assert.False(t, ok)
	assert.Equal(t, "all", f.String())

	f, err = models.ParseStatusFilter("completed")
	require.NoError(t, err)
	s, ok := f.Status()
	assert.True(t, ok)
	assert.Equal(t, models.OrderStatusCompleted, s)
}

func TestCountStatusesOnFetchedPage(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Status: models.OrderStatusNew},
		{ID: 2, Status: models.OrderStatusProcessing},
		{ID: 3, Status: models.OrderStatusCompleted},
	}
	assert.Equal(t, models.StatusCounts{All: 3, New: 1, Processing: 1, ReadyToDelivery: 0, Completed: 1},
		models.CountStatuses(orders))
}

func TestOrderValidate(t *testing.T) {
	var o models.Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"status":"new","quantity":2,"total_amount":40}`), &o))
	assert.NoError(t, o.Validate())

	o.Status = "shipped"
	assert.True(t, errors.Is(o.Validate(), models.ErrMalformedResponse))

	o = models.Order{ID: 42, Status: models.OrderStatusNew, Delivery: &models.Delivery{Status: "lost"}}
	assert.ErrorIs(t, o.Validate(), models.ErrMalformedResponse)
}

func TestIDAcceptsNumberOrString(t *testing.T) {
	var u models.User
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"phone_number":"+251911223344","type":"vendor_owner"}`), &u))
	assert.Equal(t, models.ID("7"), u.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","phone_number":"+251911223344","type":"vendor_owner"}`), &u))
	assert.Equal(t, models.ID("7"), u.ID)
	n, err := u.ID.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &u))
}

func TestUserValidate(t *testing.T) {
	u := &models.User{ID: "7", PhoneNumber: "+251911223344", Type: models.RoleVendorOwner}
	assert.NoError(t, u.Validate())
	assert.True(t, u.IsVendorOwner())

	u.Type = "wizard"
	assert.ErrorIs(t, u.Validate(), models.ErrMalformedResponse)

	var nilUser *models.User
	assert.ErrorIs(t, nilUser.Validate(), models.ErrMalformedResponse)
}
