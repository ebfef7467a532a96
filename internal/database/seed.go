package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func product(name, desc, price, original, image, category, brand string, stock int, rating string, reviews int, featured bool) models.Product {
	return models.Product{
		Name:          name,
		Description:   desc,
		Price:         decimal.RequireFromString(price),
		OriginalPrice: decimal.RequireFromString(original),
		Image:         image,
		Category:      category,
		Brand:         brand,
		Stock:         stock,
		Rating:        decimal.RequireFromString(rating),
		ReviewsCount:  reviews,
		IsFeatured:    featured,
		IsDeal:        true,
	}
}

// SampleProducts is the starter catalog inserted into an empty store.
func SampleProducts() []models.Product {
	return []models.Product{
		product("Wireless Bluetooth Headphones", "Premium noise-canceling headphones with 30-hour battery life", "79.99", "129.99", "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400", "Electronics", "AudioMax", 50, "4.5", 234, true),
		product("Smart Watch Pro", "Fitness tracker with heart rate monitor and GPS", "199.99", "299.99", "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400", "Electronics", "TechFit", 30, "4.7", 567, true),
		product("Laptop Backpack", "Water-resistant backpack with USB charging port", "49.99", "69.99", "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400", "Bags", "TravelPro", 100, "4.3", 189, false),
		product("Portable Power Bank", "20000mAh fast charging power bank", "39.99", "59.99", "https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=400", "Electronics", "PowerMax", 75, "4.6", 423, false),
		product("Wireless Mouse", "Ergonomic wireless mouse with silent clicks", "29.99", "44.99", "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=400", "Electronics", "ClickPro", 150, "4.4", 312, false),
		product("Running Shoes", "Lightweight running shoes with cushioned sole", "89.99", "119.99", "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400", "Shoes", "SportRun", 60, "4.8", 678, true),
		product("Coffee Maker", "Programmable coffee maker with thermal carafe", "69.99", "99.99", "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=400", "Home", "BrewMaster", 40, "4.5", 234, false),
		product("Yoga Mat", "Non-slip yoga mat with carrying strap", "24.99", "34.99", "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=400", "Sports", "ZenFit", 200, "4.6", 456, false),
		product("Desk Lamp LED", "Adjustable LED desk lamp with USB port", "34.99", "49.99", "https://images.unsplash.com/photo-1507473885765-e6ed057f782c?w=400", "Home", "LightPro", 80, "4.4", 178, false),
		product("Mechanical Keyboard", "RGB mechanical keyboard with blue switches", "79.99", "109.99", "https://images.unsplash.com/photo-1511467687858-23d96c32e4ae?w=400", "Electronics", "KeyMaster", 45, "4.7", 523, true),
	}
}

// Seed inserts SampleProducts when the products table is empty.
func Seed(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := SampleProducts()
	if err := db.WithContext(ctx).Create(&products).Error; err != nil {
		return fmt.Errorf("insert sample products: %w", err)
	}
	slog.Info("sample products inserted", "count", len(products))
	return nil
}
