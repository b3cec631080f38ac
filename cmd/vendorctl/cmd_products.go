package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
)

// productFlags binds the editable product fields. Media paths are read
// from the STORAGE_DISK disk.
type productFlags struct {
	in models.ProductInput
}

func (f *productFlags) bind(cmd *cobra.Command, media bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.in.Name, "name", "", "product name")
	fl.StringVar(&f.in.Description, "description", "", "description")
	fl.Float64Var(&f.in.Price, "price", 0, "unit price")
	fl.IntVar(&f.in.Stock, "stock", 0, "units in stock")
	fl.StringVar(&f.in.CategoryID, "category", "", "category id (see `catalog categories`)")
	fl.StringVar(&f.in.SubcategoryID, "subcategory", "", "subcategory id")
	if media {
		fl.StringArrayVar(&f.in.Images, "image", nil, "image path on the storage disk, repeatable (max 5)")
		fl.StringVar(&f.in.Video, "video", "", "video path on the storage disk")
	}
}

// overlay copies the flags the user set onto the current product.
func (f *productFlags) overlay(cmd *cobra.Command, p *models.Product) models.ProductInput {
	in := models.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID.String(),
	}
	if p.SubcategoryID != nil {
		in.SubcategoryID = p.SubcategoryID.String()
	}

	fl := cmd.Flags()
	if fl.Changed("name") {
		in.Name = f.in.Name
	}
	if fl.Changed("description") {
		in.Description = f.in.Description
	}
	if fl.Changed("price") {
		in.Price = f.in.Price
	}
	if fl.Changed("stock") {
		in.Stock = f.in.Stock
	}
	if fl.Changed("category") {
		in.CategoryID = f.in.CategoryID
	}
	if fl.Changed("subcategory") {
		in.SubcategoryID = f.in.SubcategoryID
	}
	return in
}

// vendorctl products list|show|create|update|delete
func (a *app) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage your product catalogue",
	}

	var (
		q   repositories.ProductQuery
		all bool
	)
	list := &cobra.Command{Use: "list", Short: "List your products"}
	list.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		query := q
		if !all {
			id, err := k.Vendors.ResolveID(ctx)
			if err != nil {
				return err
			}
			query.VendorID = id
		}
		page, err := k.Products.List(ctx, query)
		if err != nil {
			return err
		}
		if len(page.Products) == 0 {
			return a.print(page, mutedStyle.Render("No products."))
		}
		return a.print(page, productsTable(page.Products)+mutedStyle.Render(pageText(page.Pagination, "products")))
	})
	list.Flags().StringVar((*string)(&q.CategoryID), "category", "", "category id")
	list.Flags().StringVar(&q.Search, "search", "", "match product name")
	list.Flags().IntVar(&q.Page, "page", 1, "page number")
	list.Flags().IntVar(&q.Limit, "limit", 0, "page size")
	list.Flags().BoolVar(&all, "all", false, "every vendor's products, not only yours")

	show := &cobra.Command{Use: "show <id>", Short: "Show one product", Args: cobra.ExactArgs(1)}
	show.RunE = func(c *cobra.Command, args []string) error {
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			p, err := k.Products.Get(ctx, models.ID(args[0]))
			if err != nil {
				return err
			}
			return a.print(p, productDetail(p))
		})(c, args)
	}

	var create productFlags
	createCmd := &cobra.Command{Use: "create", Short: "Add a product with its images and video"}
	createCmd.RunE = a.run(func(ctx context.Context, k *kernel.Kernel) error {
		p, err := k.Products.Create(ctx, create.in)
		if err != nil {
			return err
		}
		return a.print(p, okStyle.Render("Created")+" product "+p.ID.String()+"\n"+productDetail(p))
	})
	create.bind(createCmd, true)

	var update productFlags
	updateCmd := &cobra.Command{Use: "update <id>", Short: "Change a product's details", Args: cobra.ExactArgs(1)}
	updateCmd.RunE = func(c *cobra.Command, args []string) error {
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			id := models.ID(args[0])
			current, err := k.Products.Get(ctx, id)
			if err != nil {
				return err
			}
			p, err := k.Products.Update(ctx, id, update.overlay(c, current))
			if err != nil {
				return err
			}
			return a.print(p, okStyle.Render("Updated")+" product "+p.ID.String()+"\n"+productDetail(p))
		})(c, args)
	}
	update.bind(updateCmd, false)

	deleteCmd := &cobra.Command{Use: "delete <id>", Short: "Remove a product", Args: cobra.ExactArgs(1)}
	deleteCmd.RunE = func(c *cobra.Command, args []string) error {
		return a.run(func(ctx context.Context, k *kernel.Kernel) error {
			if err := k.Products.Delete(ctx, models.ID(args[0])); err != nil {
				return err
			}
			a.say("Deleted product %s.", args[0])
			return nil
		})(c, args)
	}

	cmd.AddCommand(list, show, createCmd, updateCmd, deleteCmd)
	return cmd
}
