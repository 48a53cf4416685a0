package console

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	appcatalog "github.com/masoud-shayan/northwind/internal/application/catalog"
	apppeople "github.com/masoud-shayan/northwind/internal/application/people"
)

const failedTransaction = "the last transaction did not execute"

// Runner executes one console routine at a time against the catalog and
// people services.
type Runner struct {
	catalog *appcatalog.Service
	people  *apppeople.Service
	render  *Renderer
	prompt  *Prompter
}

// NewRunner wires the services to the given streams.
func NewRunner(catalog *appcatalog.Service, people *apppeople.Service, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		catalog: catalog,
		people:  people,
		render:  NewRenderer(out),
		prompt:  NewPrompter(in, out),
	}
}

// QueryingCategories prints every category with its product count.
func (r *Runner) QueryingCategories(ctx context.Context) error {
	r.render.Heading("Categories and how many products they have:")
	summaries, err := r.catalog.CategorySummaries(ctx)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		r.render.Line("%s has %d products.", s.CategoryName, s.ProductCount)
	}
	return nil
}

// QueryingProducts asks for a price and lists costlier products, highest first.
func (r *Runner) QueryingProducts(ctx context.Context) error {
	r.render.Heading("Products that cost more than a price, highest at top.")
	price, err := r.prompt.Decimal("Enter a product price :")
	if err != nil {
		return err
	}
	r.render.Line("%s", price.String())

	products, err := r.catalog.ProductsAbove(ctx, price)
	if err != nil {
		return err
	}
	for _, p := range products {
		r.render.Line("pId : %d - pName : %s - pCost : %s - PUnit : %d in Stock",
			p.ProductID, p.ProductName, WholeCurrency(p.Cost), p.Stock)
	}
	return nil
}

// QueryingWithLike asks for a name fragment and lists matching products.
func (r *Runner) QueryingWithLike(ctx context.Context) error {
	fragment, err := r.prompt.Line("Enter part of a product name: ")
	if err != nil {
		return err
	}
	products, err := r.catalog.ProductsLike(ctx, fragment)
	if err != nil {
		return err
	}
	for _, p := range products {
		r.render.Line("name : %s - stock : %d - discounted : %t", p.ProductName, p.Stock, p.Discontinued)
	}
	return nil
}

// ListProducts prints the product table ordered by cost, highest first.
func (r *Runner) ListProducts(ctx context.Context) error {
	products, err := r.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	r.render.Heading(fmt.Sprintf("%-3s %-35s %8s %5s %s", "ID", "Product Name", "Cost", "Stock", "Disc."))
	for _, p := range products {
		r.render.Line("%03d %-35s %8s %5d %t", p.ProductID, p.ProductName, r.render.Currency(p.Cost), p.Stock, p.Discontinued)
	}
	return nil
}

// AddProduct inserts a product and prints the table when exactly one row was
// written.
func (r *Runner) AddProduct(ctx context.Context, in appcatalog.AddProductInput) error {
	result, err := r.catalog.AddProduct(ctx, in)
	if err != nil {
		return err
	}
	if !result.Succeeded {
		r.render.Line(failedTransaction)
		return nil
	}
	return r.ListProducts(ctx)
}

// IncreaseProductPrice raises the first matching product's cost by amount.
func (r *Runner) IncreaseProductPrice(ctx context.Context, prefix string, amount decimal.Decimal) error {
	result, err := r.catalog.IncreaseProductPrice(ctx, prefix, amount)
	if err != nil {
		return err
	}
	if !result.Succeeded {
		r.render.Line(failedTransaction)
		return nil
	}
	return r.ListProducts(ctx)
}

// DeleteProducts removes products whose names start with prefix.
func (r *Runner) DeleteProducts(ctx context.Context, prefix string) error {
	result, err := r.catalog.DeleteProducts(ctx, prefix)
	if err != nil {
		return err
	}
	if !result.Succeeded {
		r.render.Line(failedTransaction)
		return nil
	}
	r.render.Line("%d product(s) were deleted.", result.Affected)
	return r.ListProducts(ctx)
}

// JoinCategoriesAndProducts prints one line per category and product pair.
func (r *Runner) JoinCategoriesAndProducts(ctx context.Context) error {
	lines, err := r.catalog.CategoryProducts(ctx)
	if err != nil {
		return err
	}
	for _, l := range lines {
		r.render.Line("%d: %s is in %s.", l.ProductID, l.ProductName, l.CategoryName)
	}
	return nil
}

// GroupJoinCategoriesAndProducts prints every category followed by its
// products in name order.
func (r *Runner) GroupJoinCategoriesAndProducts(ctx context.Context) error {
	groups, err := r.catalog.CategoriesWithProducts(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		r.render.Line("%s has %d products.", g.CategoryName, len(g.Products))
		for _, p := range g.Products {
			r.render.Line(" %s", p.ProductName)
		}
	}
	return nil
}

// People prints the roster members with at least minYears of experience.
func (r *Runner) People(ctx context.Context, minYears int) error {
	views, err := r.people.Experienced(ctx, apppeople.RosterQuery{MinYears: minYears})
	if err != nil {
		return err
	}
	for _, v := range views {
		r.render.Line("%s - %d years of experience - born %s", v.FullName, v.YearsOfExperience, v.Birthday.Format("2006-01-02"))
	}
	return nil
}
