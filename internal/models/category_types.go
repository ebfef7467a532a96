package models

// Category is derived from the distinct 'products.category' values.
type Category struct {
	Name  string `json:"category" db:"category" gorm:"column:category"`
	Slug  string `json:"slug" db:"-" gorm:"-"`
	Count int64  `json:"count" db:"count" gorm:"column:count"`
}
