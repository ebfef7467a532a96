package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		price, original string
		want            int
	}{
		{"75.00", "100.00", 25},
		{"66.67", "100.00", 33},
		{"99.99", "0", 0},
		{"120.00", "100.00", 0},
		{"100.00", "100.00", 0},
	}
	for _, tt := range tests {
		p := Product{Price: decimal.RequireFromString(tt.price), OriginalPrice: decimal.RequireFromString(tt.original)}
		if got := p.DiscountPercent(); got != tt.want {
			t.Errorf("DiscountPercent(%s of %s) = %d, want %d", tt.price, tt.original, got, tt.want)
		}
	}
}
