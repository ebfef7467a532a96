package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one row of the 'cart' table joined with the current product
// data. Price is the live catalog price, not the price the shopper saw.
type CartLine struct {
	ID            int64           `json:"cartItemId" db:"id"`
	ProductID     int64           `json:"productId" db:"product_id"`
	Name          string          `json:"name" db:"name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice" db:"original_price"`
	Image         string          `json:"image" db:"image"`
	Category      string          `json:"category" db:"category"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Stock         int             `json:"stock" db:"stock"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// FillProduct copies the display fields of p onto the line.
func (l *CartLine) FillProduct(p Product) {
	l.ProductID = p.ID
	l.Name = p.Name
	l.Price = p.Price
	l.OriginalPrice = p.OriginalPrice
	l.Image = p.Image
	l.Category = p.Category
	l.Stock = p.Stock
}
