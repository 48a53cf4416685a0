package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appcatalog "github.com/masoud-shayan/northwind/internal/application/catalog"
	"github.com/masoud-shayan/northwind/internal/domain/shared"
	"github.com/masoud-shayan/northwind/internal/interfaces/console"
)

func queryCmds(opts *options) []*cobra.Command {
	simple := []struct {
		use, short string
		fn         func(*console.Runner, context.Context) error
	}{
		{"categories", "List categories with their product counts", (*console.Runner).QueryingCategories},
		{"products", "List products costing more than a price read from stdin", (*console.Runner).QueryingProducts},
		{"like", "List products whose name contains text read from stdin", (*console.Runner).QueryingWithLike},
		{"list", "Print the product table ordered by cost", (*console.Runner).ListProducts},
		{"join", "Print each product next to its category", (*console.Runner).JoinCategoriesAndProducts},
		{"group-join", "Print every category followed by its products", (*console.Runner).GroupJoinCategoriesAndProducts},
	}

	cmds := make([]*cobra.Command, 0, len(simple))
	for _, s := range simple {
		cmds = append(cmds, &cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: opts.run(func(ctx context.Context, r *console.Runner) error {
				return s.fn(r, ctx)
			}),
		})
	}
	return cmds
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, shared.InvalidInput("--"+flag, fmt.Sprintf("is not a number: %q", value))
	}
	return d, nil
}

func addCmd(opts *options) *cobra.Command {
	var categoryID int
	var name, price string

	c := &cobra.Command{
		Use:   "add",
		Short: "Insert a product and print the product table",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, r *console.Runner) error {
			in := appcatalog.AddProductInput{CategoryID: categoryID, ProductName: name}
			if price != "" {
				d, err := parseAmount("price", price)
				if err != nil {
					return err
				}
				in.Price = &d
			}
			return r.AddProduct(ctx, in)
		}),
	}

	c.Flags().IntVar(&categoryID, "category", 6, "category id of the new product")
	c.Flags().StringVar(&name, "name", "masoud shayan", "product name")
	c.Flags().StringVar(&price, "price", "500", "unit price; empty leaves the price unknown")
	return c
}

func increasePriceCmd(opts *options) *cobra.Command {
	var prefix, amount string

	c := &cobra.Command{
		Use:   "increase-price",
		Short: "Raise the price of the first product whose name starts with a prefix",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, r *console.Runner) error {
			d, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			return r.IncreaseProductPrice(ctx, prefix, d)
		}),
	}

	c.Flags().StringVar(&prefix, "prefix", "maso", "product name prefix")
	c.Flags().StringVar(&amount, "amount", "10", "amount added to the price")
	return c
}

func deleteCmd(opts *options) *cobra.Command {
	var prefix string

	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete every product whose name starts with a prefix",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, r *console.Runner) error {
			return r.DeleteProducts(ctx, prefix)
		}),
	}

	c.Flags().StringVar(&prefix, "prefix", "maso", "product name prefix")
	return c
}

func peopleCmd(opts *options) *cobra.Command {
	var minYears int

	c := &cobra.Command{
		Use:   "people",
		Short: "Print the developer roster filtered by experience",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(ctx context.Context, r *console.Runner) error {
			return r.People(ctx, minYears)
		}),
	}

	c.Flags().IntVar(&minYears, "min-years", 0, "minimum years of experience")
	return c
}
