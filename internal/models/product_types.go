package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The storefront client reads prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is the model for the 'products' table.
type Product struct {
	ID            int64           `json:"id" db:"id" gorm:"primaryKey"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price" gorm:"type:decimal(10,2)"`
	OriginalPrice decimal.Decimal `json:"originalPrice" db:"original_price" gorm:"type:decimal(10,2)"`
	Image         string          `json:"image" db:"image"`
	Category      string          `json:"category" db:"category"`
	Brand         string          `json:"brand" db:"brand"`
	Stock         int             `json:"stock" db:"stock"`
	Rating        decimal.Decimal `json:"rating" db:"rating" gorm:"type:decimal(2,1)"`
	ReviewsCount  int             `json:"reviewsCount" db:"reviews_count"`
	IsFeatured    bool            `json:"isFeatured" db:"is_featured"`
	IsDeal        bool            `json:"isDeal" db:"is_deal"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// DiscountPercent is the whole-number markdown from OriginalPrice, or 0.
func (p Product) DiscountPercent() int {
	if !p.OriginalPrice.IsPositive() || !p.OriginalPrice.GreaterThan(p.Price) {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

// ProductSort names the orderings the catalog listing accepts.
type ProductSort string

const (
	SortDefault   ProductSort = ""
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortRating    ProductSort = "rating"
	SortNewest    ProductSort = "newest"
)

// ProductFilter holds the catalog listing query parameters.
type ProductFilter struct {
	Category string
	Search   string
	Sort     ProductSort
	Limit    int
	Offset   int
}
