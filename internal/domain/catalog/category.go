package catalog

// Category groups products. Products is populated only when the query asks
// for it; otherwise it is nil.
type Category struct {
	CategoryID   int       `gorm:"column:category_id;primaryKey"`
	CategoryName string    `gorm:"column:category_name;type:varchar(15);not null"`
	Description  string    `gorm:"column:description;type:text"`
	Products     []Product `gorm:"foreignKey:CategoryID;references:CategoryID"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// ProductCount returns the number of loaded products
func (c *Category) ProductCount() int {
	return len(c.Products)
}

// Key returns the category's join key
func (c *Category) Key() int {
	return c.CategoryID
}
