package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CategorySortFields contains allowed sort fields for category queries,
// including the product columns reachable through a join.
var CategorySortFields = map[string]bool{
	"category_id":              true,
	"category_name":            true,
	"categories.category_id":   true,
	"categories.category_name": true,
	"products.product_id":      true,
	"products.product_name":    true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"product_id":               true,
	"product_name":             true,
	"category_id":              true,
	"unit_price":               true,
	"units_in_stock":           true,
	"discontinued":             true,
	"products.product_id":      true,
	"products.product_name":    true,
	"products.category_id":     true,
	"products.unit_price":      true,
	"categories.category_id":   true,
	"categories.category_name": true,
}
