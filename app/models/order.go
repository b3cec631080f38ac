package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// OrderStatus is the fulfilment stage of an order. Orders only move forward:
// new → processing → ready_to_delivery → completed.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusReadyToDelivery OrderStatus = "ready_to_delivery"
	OrderStatusCompleted       OrderStatus = "completed"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusReadyToDelivery,
	OrderStatusCompleted,
}

var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusNew:             OrderStatusProcessing,
	OrderStatusProcessing:      OrderStatusReadyToDelivery,
	OrderStatusReadyToDelivery: OrderStatusCompleted,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusReadyToDelivery, OrderStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (s OrderStatus) IsTerminal() bool { return s == OrderStatusCompleted }

// Label is the human form, e.g. "Ready to delivery".
func (s OrderStatus) Label() string {
	l := strings.ReplaceAll(string(s), "_", " ")
	if l == "" {
		return l
	}
	return strings.ToUpper(l[:1]) + l[1:]
}

// NextValidStatus returns the single status current may move to.
// ok is false for completed and for unknown statuses.
func NextValidStatus(current OrderStatus) (next OrderStatus, ok bool) {
	next, ok = nextStatus[current]
	return next, ok
}

// NextTransitions is the set of statuses offered as the next action for an
// order in current. It has one element for every non-terminal status and
// none for completed.
func NextTransitions(current OrderStatus) []OrderStatus {
	if next, ok := NextValidStatus(current); ok {
		return []OrderStatus{next}
	}
	return nil
}

// CanTransition reports whether from → to is the legal next step.
func CanTransition(from, to OrderStatus) bool {
	next, ok := NextValidStatus(from)
	return ok && next == to
}

// ParseOrderStatus accepts "Ready to delivery", "ready-to-delivery" and
// similar spellings. Unknown input yields ErrUnknownStatus with the
// closest valid status as a hint.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	norm := normaliseStatus(raw)
	s := OrderStatus(norm)
	if s.Valid() {
		return s, nil
	}

	best, bestDist := OrderStatus(""), -1
	for _, candidate := range OrderStatuses {
		d := levenshtein.ComputeDistance(norm, string(candidate))
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist >= 0 && bestDist <= len(best)/2 {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownStatus, raw, best)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownStatus, raw)
}

func normaliseStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return s
}

// StatusFilter narrows an order list to one status. StatusFilterNone means
// every status.
type StatusFilter string

const StatusFilterNone StatusFilter = ""

// FilterBy returns the filter for a single status.
func FilterBy(s OrderStatus) StatusFilter { return StatusFilter(s) }

// Status returns the filtered status; ok is false for StatusFilterNone.
func (f StatusFilter) Status() (OrderStatus, bool) {
	if f == StatusFilterNone {
		return "", false
	}
	return OrderStatus(f), true
}

func (f StatusFilter) String() string {
	if f == StatusFilterNone {
		return "all"
	}
	return string(f)
}

// ParseStatusFilter accepts a status or "", "all", "none".
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch normaliseStatus(raw) {
	case "", "all", "none":
		return StatusFilterNone, nil
	}
	s, err := ParseOrderStatus(raw)
	if err != nil {
		return StatusFilterNone, err
	}
	return FilterBy(s), nil
}

// DeliveryStatus tracks the courier leg of an order.
type DeliveryStatus string

const (
	DeliveryNotAssigned    DeliveryStatus = "not_assigned"
	DeliveryAssigned       DeliveryStatus = "assigned"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryNotAssigned, DeliveryAssigned, DeliveryOutForDelivery, DeliveryDelivered:
		return true
	}
	return false
}

type Delivery struct {
	ID         ID             `json:"id"`
	Status     DeliveryStatus `json:"status"`
	DriverID   *ID            `json:"driver_id,omitempty"`
	DriverName string         `json:"driver_name,omitempty"`
	Address    string         `json:"address,omitempty"`
}

// OrderParty is the client or vendor side of an order as embedded by the API.
type OrderParty struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// OrderProduct is the product snapshot taken when the order was placed.
type OrderProduct struct {
	ID     ID       `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Images []string `json:"images,omitempty"`
}

type Order struct {
	ID            int64        `json:"id"`
	Status        OrderStatus  `json:"status"`
	Client        OrderParty   `json:"client"`
	Vendor        OrderParty   `json:"vendor"`
	Product       OrderProduct `json:"product"`
	Quantity      int          `json:"quantity"`
	UnitPrice     float64      `json:"unit_price"`
	TotalAmount   float64      `json:"total_amount"`
	PaymentMethod string       `json:"payment_method"`
	Delivery      *Delivery    `json:"delivery,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (o *Order) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("%w: order id %d", ErrMalformedResponse, o.ID)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: order %d has status %q", ErrMalformedResponse, o.ID, o.Status)
	}
	if o.Quantity < 0 || o.TotalAmount < 0 {
		return fmt.Errorf("%w: order %d has negative quantity or total", ErrMalformedResponse, o.ID)
	}
	if o.Delivery != nil && o.Delivery.Status != "" && !o.Delivery.Status.Valid() {
		return fmt.Errorf("%w: order %d has delivery status %q", ErrMalformedResponse, o.ID, o.Delivery.Status)
	}
	return nil
}

// StatusCounts is the per-status breakdown of a set of orders.
type StatusCounts struct {
	All             int `json:"all"`
	New             int `json:"new"`
	Processing      int `json:"processing"`
	ReadyToDelivery int `json:"ready_to_delivery"`
	Completed       int `json:"completed"`
}

// Of returns the count for s.
func (c StatusCounts) Of(s OrderStatus) int {
	switch s {
	case OrderStatusNew:
		return c.New
	case OrderStatusProcessing:
		return c.Processing
	case OrderStatusReadyToDelivery:
		return c.ReadyToDelivery
	case OrderStatusCompleted:
		return c.Completed
	}
	return 0
}

// CountStatuses tallies orders by status.
func CountStatuses(orders []Order) StatusCounts {
	var c StatusCounts
	for _, o := range orders {
		c.All++
		switch o.Status {
		case OrderStatusNew:
			c.New++
		case OrderStatusProcessing:
			c.Processing++
		case OrderStatusReadyToDelivery:
			c.ReadyToDelivery++
		case OrderStatusCompleted:
			c.Completed++
		}
	}
	return c
}

// VendorStats is the server-side aggregate over a vendor's full history.
type VendorStats struct {
	TotalOrders       int                 `json:"total_orders"`
	TotalRevenue      float64             `json:"total_revenue"`
	AverageOrderValue float64             `json:"average_order_value"`
	ByStatus          map[OrderStatus]int `json:"by_status"`
}
