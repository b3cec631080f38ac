package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
)

// vendorctl vendor status|show
func (a *app) vendorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Vendor application and storefront details",
	}

	status := &cobra.Command{Use: "status", Short: "Show where your vendor application stands"}
	status.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		g, err := k.Vendors.Gate(ctx)
		if err != nil {
			return err
		}
		text := gateView(g)
		if g.Vendor != nil {
			text = vendorDetail(g.Vendor) + "\n" + text
		}
		return a.print(map[string]any{"gate": g.Gate, "vendor": g.Vendor, "reason": g.Reason}, text)
	})

	var id string
	show := &cobra.Command{Use: "show", Short: "Show your vendor, or another by --id"}
	show.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		var (
			v   *models.Vendor
			err error
		)
		if id != "" {
			v, err = k.Vendors.ByID(ctx, models.ID(id))
		} else {
			v, err = k.Vendors.Resolve(ctx)
		}
		if err != nil {
			return err
		}
		return a.print(v, vendorDetail(v))
	})
	show.Flags().StringVar(&id, "id", "", "vendor id")

	cmd.AddCommand(status, show)
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Storefront overview: stats, unread notifications and recent orders",
	}
	cmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		d, err := k.Dashboard.Load(ctx)
		if err != nil {
			return err
		}
		return a.print(d, dashboardView(d))
	})
	return cmd
}
