package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/masoud-shayan/northwind/internal/domain/catalog"
)

// AddProductInput carries the fields of a new product. A nil Price leaves
// the product without a price.
type AddProductInput struct {
	CategoryID  int              `json:"category_id" validate:"gt=0"`
	ProductName string           `json:"product_name" validate:"notblank,max=40"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

// ProductView is a read-only projection of a product
type ProductView struct {
	ProductID    int
	ProductName  string
	Cost         decimal.NullDecimal
	Stock        int
	Discontinued bool
}

// CategorySummary reports how many products a category holds
type CategorySummary struct {
	CategoryName string
	ProductCount int
}

// CategoryProductLine is one row of the category/product inner join
type CategoryProductLine struct {
	CategoryName string
	ProductID    int
	ProductName  string
}

// CategoryGroup is one category with its products ordered by name
type CategoryGroup struct {
	CategoryName string
	Products     []ProductView
}

// MutationResult reports the rows a SaveChanges call touched and whether
// that count is the one the operation expects.
type MutationResult struct {
	Affected  int64
	Succeeded bool
}

func toProductView(p *catalog.Product) ProductView {
	return ProductView{
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		Cost:         p.Cost,
		Stock:        p.Stock,
		Discontinued: p.Discontinued,
	}
}

func toProductViews(products []*catalog.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}
