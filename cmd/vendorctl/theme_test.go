package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/services"
)

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		0:         "ETB 0.00",
		12.5:      "ETB 12.50",
		999.999:   "ETB 1,000.00",
		1234567.8: "ETB 1,234,567.80",
		-42:       "ETB -42.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, money(in), "money(%v)", in)
	}
}

func TestStatusBadgeShowsLabel(t *testing.T) {
	for _, s := range models.OrderStatuses {
		assert.Contains(t, ansi.Strip(statusBadge(s)), s.Label())
	}
	assert.Contains(t, ansi.Strip(statusBadge("bogus")), "Bogus")
	assert.Contains(t, ansi.Strip(vendorBadge(models.VendorPending)), "PENDING")
}

func TestTableAlignsColumns(t *testing.T) {
	out := ansi.Strip(table(
		[]string{"ID", "NAME"},
		[][]string{{"1", "Teff Flour 5kg"}, {"22", "Berbere"}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	col := strings.Index(lines[0], "NAME")
	require.Positive(t, col)
	assert.Equal(t, col, strings.Index(lines[1], "Teff"))
	assert.Equal(t, col, strings.Index(lines[2], "Berbere"))
}

func TestTableShortRowsArePadded(t *testing.T) {
	out := ansi.Strip(table([]string{"A", "B", "C"}, [][]string{{"x"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "x", strings.TrimSpace(lines[1]))
}

func TestOrdersTable(t *testing.T) {
	out := ansi.Strip(ordersTable([]models.Order{{
		ID:          42,
		Status:      models.OrderStatusReadyToDelivery,
		Client:      models.OrderParty{Name: "Hana"},
		Product:     models.OrderProduct{Name: "Berbere 1kg"},
		Quantity:    2,
		TotalAmount: 1500,
	}}))
	for _, want := range []string{"#42", "Ready to delivery", "Hana", "Berbere 1kg", "ETB 1,500.00"} {
		assert.Contains(t, out, want)
	}
}

func TestOrderDetailNextStatus(t *testing.T) {
	o := &models.Order{ID: 1, Status: models.OrderStatusNew}
	assert.Contains(t, ansi.Strip(orderDetail(o)), "Processing")

	o.Status = models.OrderStatusCompleted
	assert.Contains(t, ansi.Strip(orderDetail(o)), "none, order is completed")
}

func TestAggregatesLine(t *testing.T) {
	agg := services.Aggregate([]models.Order{
		{ID: 1, Status: models.OrderStatusNew, TotalAmount: 10},
		{ID: 2, Status: models.OrderStatusProcessing, TotalAmount: 20},
		{ID: 3, Status: models.OrderStatusCompleted, TotalAmount: 30},
	})
	out := aggregatesLine(agg)
	assert.Contains(t, out, "all 3 · new 1 · processing 1 · ready 0 · completed 1")
	assert.Contains(t, out, "revenue ETB 60.00 · average ETB 20.00")
}

func TestGateView(t *testing.T) {
	assert.Contains(t, ansi.Strip(gateView(services.GateResult{Gate: services.GateDashboard})), "Approved")
	assert.Contains(t, ansi.Strip(gateView(services.GateResult{Gate: services.GatePendingApproval})), "Pending approval")
	assert.Contains(t, ansi.Strip(gateView(services.GateResult{Gate: services.GateRejected, Reason: "missing licence"})), "missing licence")
	assert.Contains(t, gateView(services.GateResult{Gate: services.GateApply}), "No vendor application")
}

func TestErrorViewListsFields(t *testing.T) {
	err := fmt.Errorf("auth: login: %w", &services.FormError{
		Err: services.ErrInvalidInput,
		Fields: []services.FieldError{
			{Field: "password", Message: "The password must be at least 6 characters."},
			{Field: "phone_number", Message: "The phone number field is required."},
		},
	})
	out := ansi.Strip(errorView(err))
	assert.Contains(t, out, "Please fix the following:")
	assert.Contains(t, out, "password  The password must be at least 6 characters.")
	assert.Contains(t, out, "phone_number  The phone number field is required.")

	assert.Equal(t, "Error: boom", ansi.Strip(errorView(errors.New("boom"))))
}

func TestParseOrderID(t *testing.T) {
	id, err := parseOrderID("#42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseOrderID(bad)
		assert.Error(t, err, bad)
	}
}
