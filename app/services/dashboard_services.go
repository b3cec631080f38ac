package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/workerpool"
)

// Dashboard is everything the landing screen shows at once.
type Dashboard struct {
	Vendor      *models.Vendor
	Stats       *models.VendorStats
	Unread      int
	RecentPage  *models.OrderPage
	PageSummary PageAggregates
}

// DashboardService loads the dashboard with the queries running
// concurrently.
type DashboardService struct {
	vendors       *VendorService
	notifications *NotificationService
	workflow      func(vendorID models.ID) *OrderWorkflow
	concurrency   int
}

// NewDashboardService takes the factory the CLI uses to build an order
// workflow once the vendor id is known.
func NewDashboardService(v *VendorService, n *NotificationService, workflow func(models.ID) *OrderWorkflow) *DashboardService {
	return &DashboardService{vendors: v, notifications: n, workflow: workflow, concurrency: 3}
}

// Load resolves the vendor first, then fetches stats, unread count and the
// first order page in parallel. The first failure cancels the rest.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	vendor, err := s.vendors.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	wf := s.workflow(vendor.ID)
	d := &Dashboard{Vendor: vendor}

	g, _ := workerpool.WithContext(ctx, s.concurrency)
	g.Go(func(ctx context.Context) error {
		st, err := wf.Stats(ctx)
		d.Stats = st
		return err
	})
	g.Go(func(ctx context.Context) error {
		n, err := s.notifications.UnreadCount(ctx)
		d.Unread = n
		return err
	})
	g.Go(func(ctx context.Context) error {
		p, err := wf.FetchOrders(ctx)
		d.RecentPage = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	d.PageSummary = Aggregate(d.RecentPage.Orders)
	return d, nil
}
