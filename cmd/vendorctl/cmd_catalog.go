package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
)

// vendorctl catalog categories|subcategories|subscriptions
func (a *app) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Categories and vendor plans",
	}

	categories := &cobra.Command{Use: "categories", Short: "List product categories"}
	categories.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		cs, err := k.Catalog.Categories(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(cs))
		for _, c := range cs {
			rows = append(rows, []string{c.ID.String(), c.Name})
		}
		return a.print(cs, table([]string{"ID", "NAME"}, rows))
	})

	subcategories := &cobra.Command{
		Use:   "subcategories <category-id>",
		Short: "List the subcategories of a category",
		Args:  cobra.ExactArgs(1),
	}
	subcategories.RunE = func(c *cobra.Command, args []string) error {
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			ss, err := k.Catalog.Subcategories(ctx, models.ID(args[0]))
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(ss))
			for _, s := range ss {
				rows = append(rows, []string{s.ID.String(), s.Name})
			}
			return a.print(ss, table([]string{"ID", "NAME"}, rows))
		})(c, args)
	}

	subscriptions := &cobra.Command{Use: "subscriptions", Short: "List vendor subscription plans"}
	subscriptions.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		ps, err := k.Catalog.Subscriptions(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(ps))
		for _, p := range ps {
			rows = append(rows, []string{p.ID.String(), p.Name, money(p.Price), fmt.Sprintf("%d days", p.DurationDays), strings.Join(p.Features, ", ")})
		}
		return a.print(ps, table([]string{"ID", "PLAN", "PRICE", "DURATION", "FEATURES"}, rows))
	})

	cmd.AddCommand(categories, subcategories, subscriptions)
	return cmd
}

// vendorctl notifications list|unread|read
func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Your notifications",
	}

	list := &cobra.Command{Use: "list", Short: "List notifications, newest first"}
	list.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		ns, err := k.Notifications.List(ctx)
		if err != nil {
			return err
		}
		if len(ns) == 0 {
			return a.print(ns, mutedStyle.Render("No notifications."))
		}
		return a.print(ns, notificationsTable(ns))
	})

	unread := &cobra.Command{Use: "unread", Short: "Count unread notifications"}
	unread.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		n, err := k.Notifications.UnreadCount(ctx)
		if err != nil {
			return err
		}
		return a.print(map[string]int{"unread": n}, fmt.Sprintf("%d unread", n))
	})

	read := &cobra.Command{Use: "read <id>...", Short: "Mark notifications read", Args: cobra.MinimumNArgs(1)}
	read.RunE = func(c *cobra.Command, args []string) error {
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			for _, id := range args {
				if err := k.Notifications.MarkRead(ctx, models.ID(id)); err != nil {
					return err
				}
			}
			a.say("Marked %d read.", len(args))
			return nil
		})(c, args)
	}

	cmd.AddCommand(list, unread, read)
	return cmd
}
