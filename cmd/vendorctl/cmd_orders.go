package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/config"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
	"github.com/shashiranjanraj/vendordesk/internal/server"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
	"github.com/shashiranjanraj/vendordesk/pkg/metrics"
	"github.com/shashiranjanraj/vendordesk/pkg/schedule"
)

// orderFilters are the list flags shared by `orders list` and `orders watch`.
type orderFilters struct {
	status string
	search string
	page   int
}

func (f *orderFilters) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "new, processing, ready_to_delivery, completed or all")
	cmd.Flags().StringVar(&f.search, "search", "", "match client name, product name or order id")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
}

// apply sets the filter state on wf. The page is set last because changing
// the filter or search resets it.
func (f *orderFilters) apply(wf *services.OrderWorkflow) error {
	filter, err := models.ParseStatusFilter(f.status)
	if err != nil {
		return err
	}
	wf.SetStatusFilter(filter)
	wf.SetSearch(f.search)
	wf.SetPage(f.page)
	return nil
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", raw)
	}
	return id, nil
}

func orderListView(wf *services.OrderWorkflow, page *models.OrderPage) string {
	if len(page.Orders) == 0 {
		if st, ok := wf.Query().Status.Status(); ok {
			return mutedStyle.Render(fmt.Sprintf("No %s orders.", strings.ToLower(st.Label())))
		}
		return mutedStyle.Render("No orders.")
	}
	return ordersTable(page.Orders) + pageFooter(page.Pagination) + "\n" + aggregatesLine(wf.Aggregates())
}

// vendorctl orders list|show|advance|set-status|stats|watch
func (a *app) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Work through your storefront's orders",
	}
	cmd.AddCommand(
		a.ordersListCmd(),
		a.ordersShowCmd(),
		a.ordersAdvanceCmd(),
		a.ordersSetStatusCmd(),
		a.ordersStatsCmd(),
		a.ordersWatchCmd(),
	)
	return cmd
}

func (a *app) ordersListCmd() *cobra.Command {
	var f orderFilters
	cmd := &cobra.Command{Use: "list", Short: "List orders one page at a time"}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		wf, _, err := k.VendorOrders(ctx)
		if err != nil {
			return err
		}
		if err := f.apply(wf); err != nil {
			return err
		}
		page, err := wf.FetchOrders(ctx)
		if err != nil {
			return err
		}
		return a.print(page, orderListView(wf, page))
	})
	f.bind(cmd)
	return cmd
}

func (a *app) ordersShowCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "show <id>", Short: "Show one order", Args: cobra.ExactArgs(1)}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			wf, _, err := k.VendorOrders(ctx)
			if err != nil {
				return err
			}
			o, err := wf.Order(ctx, id)
			if err != nil {
				return err
			}
			return a.print(o, orderDetail(o))
		})(c, args)
	}
	return cmd
}

func (a *app) ordersAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance <id>",
		Short: "Move an order to its next status",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			wf, _, err := k.VendorOrders(ctx)
			if err != nil {
				return err
			}
			next, err := wf.Advance(ctx, id)
			if err != nil {
				return err
			}
			return a.printUpdated(ctx, wf, id, next)
		})(c, args)
	}
	return cmd
}

func (a *app) ordersSetStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Set an order's status; only the next status in the lifecycle is accepted",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}
		to, err := models.ParseOrderStatus(args[1])
		if err != nil {
			return err
		}
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			wf, _, err := k.VendorOrders(ctx)
			if err != nil {
				return err
			}
			if err := wf.UpdateStatus(ctx, id, to); err != nil {
				return err
			}
			return a.printUpdated(ctx, wf, id, to)
		})(c, args)
	}
	return cmd
}

func (a *app) printUpdated(ctx context.Context, wf *services.OrderWorkflow, id int64, to models.OrderStatus) error {
	o, err := wf.Order(ctx, id)
	if err != nil {
		return err
	}
	return a.print(o, fmt.Sprintf("Order #%d is now %s", id, statusBadge(to)))
}

func (a *app) ordersStatsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "stats", Short: "Totals over your whole order history"}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		wf, _, err := k.VendorOrders(ctx)
		if err != nil {
			return err
		}
		s, err := wf.Stats(ctx)
		if err != nil {
			return err
		}
		return a.print(s, statsView(s))
	})
	return cmd
}

// orders watch refetches the list on an interval until interrupted. With
// METRICS_ADDR set, client metrics are served while it runs.
func (a *app) ordersWatchCmd() *cobra.Command {
	var (
		f        orderFilters
		interval time.Duration
	)
	cmd := &cobra.Command{Use: "watch", Short: "Keep the order list up to date"}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		wf, v, err := k.VendorOrders(ctx)
		if err != nil {
			return err
		}
		if err := f.apply(wf); err != nil {
			return err
		}

		if addr := config.MetricsAddr(); addr != "" {
			go func() {
				if err := server.Run(ctx, addr, metrics.Handler()); err != nil {
					logger.WithCtx(ctx).Warn("orders watch: metrics server stopped", "error", err)
				}
			}()
		}

		s := schedule.New()
		s.Every(interval).Name("orders:"+v.ID.String()).WithoutOverlapping().Run(func(ctx context.Context) {
			page, err := wf.Refresh(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.WithCtx(ctx).Warn("orders watch: refresh failed", "error", err)
				}
				return
			}
			_ = a.print(page, titleStyle.Render(v.BusinessName)+"  "+mutedStyle.Render(time.Now().Format("15:04:05"))+"\n"+orderListView(wf, page))
		})
		s.Run(ctx)
		return nil
	})
	f.bind(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Second, "refresh interval")
	return cmd
}
