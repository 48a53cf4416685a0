package persistence

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards so the input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PriceAbove keeps products whose unit price is strictly greater than price.
// Products without a price never match.
func PriceAbove(price decimal.Decimal) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("products.unit_price > ?", price)
	}
}

// NameLike keeps products whose name contains pattern. Wildcards typed by
// the user keep their LIKE meaning.
func NameLike(pattern string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("products.product_name LIKE ?", "%"+pattern+"%")
	}
}

// NameStartsWith keeps products whose name begins with prefix, taken literally.
func NameStartsWith(prefix string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`products.product_name LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%")
	}
}
