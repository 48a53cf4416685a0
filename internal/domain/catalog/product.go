package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/masoud-shayan/northwind/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxProductNameLength mirrors the width of the products.product_name column
const MaxProductNameLength = 40

// Product is a sellable item. A product belongs to at most one category through
// CategoryID; it holds no pointer back to the Category.
type Product struct {
	ProductID    int                 `gorm:"column:product_id;primaryKey"`
	ProductName  string              `gorm:"column:product_name;type:varchar(40);not null"`
	CategoryID   *int                `gorm:"column:category_id;index"`
	Cost         decimal.NullDecimal `gorm:"column:unit_price;type:numeric(18,2)"`
	Stock        int                 `gorm:"column:units_in_stock;type:smallint;not null;default:0"`
	Discontinued bool                `gorm:"column:discontinued;not null;default:false"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product in the given category. A zero-valued (invalid)
// cost leaves the price unknown.
func NewProduct(categoryID int, name string, cost decimal.NullDecimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if cost.Valid && cost.Decimal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}

	return &Product{
		ProductName: name,
		CategoryID:  &categoryID,
		Cost:        cost,
	}, nil
}

// IncreaseCost adds amount to the product's cost. An unknown cost stays
// unknown, so the call reports whether anything changed.
func (p *Product) IncreaseCost(amount decimal.Decimal) bool {
	if !p.Cost.Valid || amount.IsZero() {
		return false
	}
	p.Cost.Decimal = p.Cost.Decimal.Add(amount)
	return true
}

// CategoryKey returns the category id and whether one is set.
func (p *Product) CategoryKey() (int, bool) {
	if p.CategoryID == nil {
		return 0, false
	}
	return *p.CategoryID, true
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 40 characters")
	}
	return nil
}
